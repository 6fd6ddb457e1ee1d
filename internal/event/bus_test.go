package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInSubscriptionOrder(t *testing.T) {
	bus := New()

	var got []string
	bus.Subscribe("auth.signed_in", func(_ context.Context, e any) {
		got = append(got, "first:"+e.(string))
	})
	bus.Subscribe("auth.signed_in", func(_ context.Context, e any) {
		got = append(got, "second:"+e.(string))
	})
	bus.Subscribe("auth.signed_out", func(_ context.Context, e any) {
		got = append(got, "other")
	})

	bus.Publish(context.Background(), "auth.signed_in", "u1")

	assert.Equal(t, []string{"first:u1", "second:u1"}, got)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	assert.NotPanics(t, func() {
		New().Publish(context.Background(), "nobody", nil)
	})
}
