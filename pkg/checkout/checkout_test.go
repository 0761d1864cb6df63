package checkout

import (
	"testing"

	"github.com/hesham156/wafarle/pkg/models"
	"github.com/stretchr/testify/assert"
)

func validInput() PlaceOrderInput {
	return PlaceOrderInput{
		Contact: models.ContactInfo{
			FullName: "أحمد محمد",
			Email:    "ahmed@example.com",
			Phone:    "+966501234567",
		},
		PaymentMethod: models.PaymentMethodCard,
	}
}

func TestValidateAcceptsCompleteInput(t *testing.T) {
	in := validInput()
	assert.NoError(t, in.validate())
}

func TestValidateRejectsMissingContactFields(t *testing.T) {
	for _, mutate := range []func(*PlaceOrderInput){
		func(in *PlaceOrderInput) { in.Contact.FullName = "" },
		func(in *PlaceOrderInput) { in.Contact.Email = "   " },
		func(in *PlaceOrderInput) { in.Contact.Phone = "" },
	} {
		in := validInput()
		mutate(&in)
		assert.ErrorIs(t, in.validate(), ErrIncompleteContact)
	}
}

func TestValidateRejectsUnknownPaymentMethod(t *testing.T) {
	in := validInput()
	in.PaymentMethod = "crypto"
	assert.ErrorIs(t, in.validate(), ErrBadPaymentMethod)
}

func TestPaymentMethods(t *testing.T) {
	assert.True(t, models.ValidPaymentMethod(models.PaymentMethodCard))
	assert.True(t, models.ValidPaymentMethod(models.PaymentMethodPaypal))
	assert.True(t, models.ValidPaymentMethod(models.PaymentMethodBankTransfer))
	assert.False(t, models.ValidPaymentMethod("cash"))
}

func TestOrderStatuses(t *testing.T) {
	for _, status := range []string{
		models.OrderStatusPending,
		models.OrderStatusPaid,
		models.OrderStatusCompleted,
		models.OrderStatusCancelled,
	} {
		assert.True(t, models.ValidOrderStatus(status))
	}
	assert.False(t, models.ValidOrderStatus("shipped"))
}
