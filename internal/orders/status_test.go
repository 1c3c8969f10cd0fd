package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPipeline(t *testing.T) {
	steps := []Status{StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivering, StatusDelivered}
	for i := 0; i < len(steps)-1; i++ {
		assert.True(t, CanTransition(steps[i], steps[i+1]),
			"%s -> %s must be allowed", steps[i], steps[i+1])
	}
}

func TestStatusNoSkipping(t *testing.T) {
	assert.False(t, CanTransition(StatusPending, StatusShipped))
	assert.False(t, CanTransition(StatusConfirmed, StatusDelivered))
	assert.False(t, CanTransition(StatusDelivered, StatusPending))
}

func TestCancellableFromNonTerminalOnly(t *testing.T) {
	for from := range validNext {
		want := !from.Terminal()
		assert.Equal(t, want, CanTransition(from, StatusCancelled), "from %s", from)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, Status("lost").Valid())
}
