package navigation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-gin-ticket-preview/internal/model"
	apperrors "go-gin-ticket-preview/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandoff(t *testing.T) {
	h, err := NewHandoff(RouteTransfer, model.TransferHandoff{TicketCount: 2, SelectedSeats: []string{"12", "13"}})
	require.NoError(t, err)

	assert.Equal(t, RouteTransfer, h.Route)
	assert.JSONEq(t, `{"ticketCount":2,"selectedSeats":["12","13"]}`, string(h.Payload))

	var got model.TransferHandoff
	require.NoError(t, h.Decode(&got))
	assert.Equal(t, []string{"12", "13"}, got.SelectedSeats)
}

func TestDispatcher_Navigate(t *testing.T) {
	ctx := context.Background()

	t.Run("RegisteredRouteMountsLocally", func(t *testing.T) {
		out := NewMemoryPublisher(1)
		d := NewDispatcher(out)

		var mounted *Handoff
		d.Register(RoutePreview, func(ctx context.Context, h *Handoff) error {
			mounted = h
			return nil
		})

		h, err := d.Navigate(ctx, RoutePreview, model.TicketDescriptor{Section: "A"})

		require.NoError(t, err)
		require.NotNil(t, mounted)
		assert.Equal(t, h.ID, mounted.ID)
		assert.Len(t, out.ch, 0, "local routes must not reach the outbound stream")
	})

	t.Run("ViewErrorIsReturned", func(t *testing.T) {
		d := NewDispatcher(nil)
		d.Register(RoutePreview, func(ctx context.Context, h *Handoff) error {
			return apperrors.ErrNoTicketData
		})

		_, err := d.Navigate(ctx, RoutePreview, model.TicketDescriptor{})

		assert.ErrorIs(t, err, apperrors.ErrNoTicketData)
	})

	t.Run("UnregisteredRouteIsPublished", func(t *testing.T) {
		out := NewMemoryPublisher(1)
		d := NewDispatcher(out)

		h, err := d.Navigate(ctx, RouteTransfer, model.TransferHandoff{TicketCount: 1, SelectedSeats: []string{"7"}})

		require.NoError(t, err)
		require.Len(t, out.ch, 1)
		assert.Equal(t, h, <-out.ch)
	})

	t.Run("NoOutbound", func(t *testing.T) {
		d := NewDispatcher(nil)

		_, err := d.Navigate(ctx, RouteTransfer, nil)

		assert.ErrorIs(t, err, apperrors.ErrRouteUnavailable)
	})

	t.Run("UnmarshalablePayload", func(t *testing.T) {
		d := NewDispatcher(NewMemoryPublisher(1))

		_, err := d.Navigate(ctx, RouteTransfer, make(chan int))

		var jsonErr *json.UnsupportedTypeError
		assert.True(t, errors.As(err, &jsonErr))
	})
}

func TestMemoryPublisher_SubscribeDeliversPublished(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	p := NewMemoryPublisher(4)
	msgs, err := p.Subscribe(ctx)
	require.NoError(t, err)

	h, err := NewHandoff(RouteTransfer, model.TransferHandoff{TicketCount: 1, SelectedSeats: []string{"3"}})
	require.NoError(t, err)
	require.NoError(t, p.Publish(ctx, h))

	select {
	case d := <-msgs:
		assert.Equal(t, h.ID, d.Data.ID)
		d.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for delivery")
	}
}

func TestMemoryPublisher_PublishRespectsContext(t *testing.T) {
	p := NewMemoryPublisher(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, &Handoff{Route: RouteTransfer})

	assert.ErrorIs(t, err, context.Canceled)
}
