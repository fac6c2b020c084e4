package service

import (
	"testing"

	"photo-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidatePaymentEvent(t *testing.T) {
	valid := models.PaymentEvent{
		OrderID:        "order-1",
		IdempotencyKey: "pi_123",
		SequenceNumber: 1,
		Status:         models.PaymentStatusPaid,
		Amount:         2500,
	}
	assert.NoError(t, validatePaymentEvent(&valid))

	missingKey := valid
	missingKey.IdempotencyKey = ""
	assert.ErrorIs(t, validatePaymentEvent(&missingKey), models.ErrValidation)

	missingOrder := valid
	missingOrder.OrderID = ""
	assert.ErrorIs(t, validatePaymentEvent(&missingOrder), models.ErrValidation)

	badSeq := valid
	badSeq.SequenceNumber = 0
	assert.ErrorIs(t, validatePaymentEvent(&badSeq), models.ErrValidation)

	badStatus := valid
	badStatus.Status = "chargeback"
	assert.ErrorIs(t, validatePaymentEvent(&badStatus), models.ErrValidation)

	refund := valid
	refund.Status = models.PaymentStatusRefunded
	refund.Amount = 0
	assert.NoError(t, validatePaymentEvent(&refund))
}

func TestNewBaseEvent(t *testing.T) {
	ev := newBaseEvent(models.EventTypeOrderFulfilled)

	assert.Equal(t, models.EventTypeOrderFulfilled, ev.EventType)
	assert.NotEmpty(t, ev.EventID)
	assert.False(t, ev.Timestamp.IsZero())

	// Event ids are unique per event, not per type.
	assert.NotEqual(t, ev.EventID, newBaseEvent(models.EventTypeOrderFulfilled).EventID)
}
