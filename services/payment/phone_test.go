package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"0712345678":     "254712345678",
		"712345678":      "254712345678",
		"254712345678":   "254712345678",
		" 0712 345 678 ": "254712345678",
		"+254712345678":  "254712345678",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizePhone(input), "input %q", input)
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("0712345678"))
	assert.True(t, ValidPhone("254712345678"))
	assert.False(t, ValidPhone("12345"))
	assert.False(t, ValidPhone(""))
}
