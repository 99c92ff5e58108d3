package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"keja/config"
	"keja/models"
	"keja/services/booking"
	"keja/services/notification"

	"github.com/hibiken/asynq"
)

const (
	sweepInterval = 5 * time.Minute
	sweepCutoff   = 2 * time.Minute
)

// RedisOpts returns the asynq broker connection options.
func RedisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// StartWorker runs the async worker in background: notification dispatch,
// approval-triggered payment initiation, and the stale-payment sweep.
func StartWorker(bookingSvc booking.BookingService, dispatcher notification.Dispatcher) {
	srv := asynq.NewServer(
		RedisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeNotifyDispatch, handleNotifyTask(dispatcher))
	mux.HandleFunc(TypePaymentInitiate, handlePaymentInitiateTask(bookingSvc))

	go runSweeper(bookingSvc)

	// Start async worker with retry logic.
	go func() {
		log.Println("[Worker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleNotifyTask(dispatcher notification.Dispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var event models.NotificationEvent
		if err := json.Unmarshal(t.Payload(), &event); err != nil {
			log.Printf("[Worker] malformed notification payload: %v", err)
			return nil // not retryable
		}
		return dispatcher.Dispatch(ctx, event)
	}
}

func handlePaymentInitiateTask(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload paymentInitiatePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			log.Printf("[Worker] malformed payment initiation payload: %v", err)
			return nil // not retryable
		}

		result, err := bookingSvc.InitiatePayment(ctx, payload.BookingID, "")
		if err != nil {
			return err // asynq retries with backoff
		}
		if !result.Success {
			// Expected rejection; the tenant retries manually.
			log.Printf("[Worker] gateway rejected payment for booking %s: %s",
				payload.BookingID, result.Message)
		}
		return nil
	}
}

// runSweeper periodically resolves payments whose callback never arrived.
func runSweeper(bookingSvc booking.BookingService) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := bookingSvc.SweepStalePayments(ctx, time.Now().Add(-sweepCutoff)); err != nil {
			log.Printf("[Worker] stale payment sweep failed: %v", err)
		}
		cancel()
	}
}
