package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextOrderStatus(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		eventStatus string
		want        string
		wantErr     error
	}{
		{"pending paid fulfills", OrderStatusPending, PaymentStatusPaid, OrderStatusFulfilled, nil},
		{"pending cancelled", OrderStatusPending, PaymentStatusCancelled, OrderStatusCancelled, nil},
		{"pending refunded", OrderStatusPending, PaymentStatusRefunded, OrderStatusRefunded, nil},
		{"fulfilled refunded", OrderStatusFulfilled, PaymentStatusRefunded, OrderStatusRefunded, nil},
		{"fulfilled paid again conflicts", OrderStatusFulfilled, PaymentStatusPaid, "", ErrConflict},
		{"fulfilled cancel conflicts", OrderStatusFulfilled, PaymentStatusCancelled, "", ErrConflict},
		{"refunded refunded conflicts", OrderStatusRefunded, PaymentStatusRefunded, "", ErrConflict},
		{"cancelled paid conflicts", OrderStatusCancelled, PaymentStatusPaid, "", ErrConflict},
		{"unknown event status", OrderStatusPending, "chargeback", "", ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOrderStatus(tt.current, tt.eventStatus)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, Terminal(OrderStatusPending))
	assert.False(t, Terminal(OrderStatusFulfilled))
	assert.True(t, Terminal(OrderStatusRefunded))
	assert.True(t, Terminal(OrderStatusCancelled))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleConsumer.Valid())
	assert.True(t, RoleCreator.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestAccessLevelGrantsSource(t *testing.T) {
	assert.True(t, AccessFullResolution.GrantsSource())
	assert.True(t, AccessPrintReady.GrantsSource())
	assert.False(t, AccessPreviewOnly.GrantsSource())
	assert.False(t, AccessNone.GrantsSource())
}

func TestOrderLineTotal(t *testing.T) {
	digital := OrderLine{ItemType: LineTypeDigital, UnitPrice: 2500, Quantity: 1}
	assert.Equal(t, int64(2500), digital.Total())

	printLine := OrderLine{ItemType: LineTypePrint, UnitPrice: 4500, Quantity: 3}
	assert.Equal(t, int64(13500), printLine.Total())
}
