package event_bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishInRegistrationOrder(t *testing.T) {
	// given
	bus := NewEventBus()
	var calls []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		bus.Subscribe("test.event", func(Event) {
			calls = append(calls, name)
		})
	}

	// when
	bus.Publish(NewEvent(context.Background(), "test.event", nil))

	// then
	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestEventBus_UnsubscribeStopsDelivery(t *testing.T) {
	// given
	bus := NewEventBus()
	count := 0
	unsubscribe := bus.Subscribe("test.event", func(Event) {
		count++
	})

	// when
	bus.Publish(NewEvent(context.Background(), "test.event", nil))
	unsubscribe()
	bus.Publish(NewEvent(context.Background(), "test.event", nil))

	// then
	assert.Equal(t, 1, count)
}

func TestEventBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	// given
	bus := NewEventBus()
	bus.Subscribe("test.event", func(Event) {
		panic("subscriber bug")
	})
	delivered := false
	bus.Subscribe("test.event", func(e Event) {
		delivered = true
		require.NotNil(t, e.Context())
	})

	// when
	bus.Publish(NewEvent(context.Background(), "test.event", nil))

	// then
	assert.True(t, delivered)
}
