// internal/domain/order/entity_test.go
package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionHappyPath(t *testing.T) {
	path := []OrderStatus{StatusNew, StatusProcessing, StatusConfirmed, StatusShipped, StatusDelivered}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransition(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestCanTransitionCancellation(t *testing.T) {
	assert.True(t, CanTransition(StatusNew, StatusCanceled))
	assert.True(t, CanTransition(StatusProcessing, StatusCanceled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCanceled))
	assert.True(t, CanTransition(StatusProcessing, StatusCancelRequest))
	assert.True(t, CanTransition(StatusCancelRequest, StatusCanceled))

	assert.False(t, CanTransition(StatusNew, StatusCancelRequest))
	assert.False(t, CanTransition(StatusShipped, StatusCanceled))
	assert.False(t, CanTransition(StatusShipped, StatusCancelRequest))
	assert.False(t, CanTransition(StatusConfirmed, StatusCancelRequest))
	assert.False(t, CanTransition(StatusCancelRequest, StatusConfirmed))
}

func TestCanTransitionRejectsBackwardMoves(t *testing.T) {
	assert.False(t, CanTransition(StatusDelivered, StatusShipped))
	assert.False(t, CanTransition(StatusConfirmed, StatusNew))
	assert.False(t, CanTransition(StatusShipped, StatusProcessing))
	assert.False(t, CanTransition(StatusNew, StatusDelivered))
}

func TestTerminalStatesAllowNothing(t *testing.T) {
	for _, terminal := range []OrderStatus{StatusDelivered, StatusCanceled} {
		assert.True(t, terminal.Terminal())
		for other := range statusTransitions {
			assert.False(t, CanTransition(terminal, other), "%s -> %s", terminal, other)
		}
	}
}

func TestUnknownStatusIsInvalid(t *testing.T) {
	unknown := OrderStatus("refunded")
	assert.False(t, unknown.Valid())
	assert.False(t, unknown.Terminal())
	assert.False(t, CanTransition(unknown, StatusCanceled))
	assert.False(t, CanTransition(StatusNew, unknown))
}

func TestValidateFulfillment(t *testing.T) {
	assert.NoError(t, ValidateFulfillment(DeliveryPickup, ""))
	assert.NoError(t, ValidateFulfillment(DeliveryShipping, "12 Nguyen Hue, Q1, HCMC"))

	assert.ErrorIs(t, ValidateFulfillment(DeliveryShipping, ""), ErrAddressRequired)
	assert.ErrorIs(t, ValidateFulfillment(DeliveryShipping, "   "), ErrAddressRequired)
}
