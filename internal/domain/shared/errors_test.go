package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorIs(t *testing.T) {
	t.Run("matches sentinel by code", func(t *testing.T) {
		err := NewDomainError("INVALID_STATE_TRANSITION", "Cannot transition invoice from DRAFT to PAID")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("different codes do not match", func(t *testing.T) {
		err := NewDomainError("NOT_FOUND", "Invoice not found")
		assert.False(t, errors.Is(err, ErrInvalidTransition))
	})

	t.Run("survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("sending invoice: %w", NewDomainError("INVALID_STATE_TRANSITION", "Cannot transition invoice from PAID to SENT"))
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("non-domain errors do not match", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("plain"), ErrInvalidTransition))
	})
}
