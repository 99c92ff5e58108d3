package handlers

import (
	"errors"
	"net/http"

	"keja/services/booking"
	"keja/services/payment"
	"keja/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		validationErr  booking.ValidationError
		notFoundErr    booking.NotFoundError
		forbiddenErr   booking.ForbiddenError
		stateErr       booking.InvalidStateError
		timeoutErr     booking.PaymentTimeoutError
		gatewayAuthErr payment.GatewayAuthError
		gatewayReqErr  payment.GatewayRequestError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", validationErr.Error())
	case errors.As(err, &notFoundErr):
		utils.JSONError(c, http.StatusNotFound, "Not found", notFoundErr.Error())
	case errors.As(err, &forbiddenErr):
		utils.JSONError(c, http.StatusForbidden, "Forbidden", forbiddenErr.Error())
	case errors.As(err, &stateErr):
		utils.JSONError(c, http.StatusConflict, "Invalid state", stateErr.Error())
	case errors.As(err, &timeoutErr):
		utils.JSONError(c, http.StatusRequestTimeout, "Payment still pending", timeoutErr.Error())
	case errors.As(err, &gatewayAuthErr), errors.As(err, &gatewayReqErr):
		utils.JSONError(c, http.StatusBadGateway, "Payment unavailable, try again", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
