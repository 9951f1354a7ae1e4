package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-gin-ticket-preview/internal/mocks"
	"go-gin-ticket-preview/internal/model"
	"go-gin-ticket-preview/internal/navigation"
	"go-gin-ticket-preview/internal/service"
	"go-gin-ticket-preview/internal/transfer"
	apperrors "go-gin-ticket-preview/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const fallbackImage = "/assets/ticket-fallback.png"

func sampleDescriptor() model.TicketDescriptor {
	return model.TicketDescriptor{
		Section:       "GA Floor",
		Row:           "GA",
		BaseSeat:      "12",
		TicketCount:   3,
		Title:         "Forget Tomorrow World Tour",
		Venue:         "Moody Center - Austin",
		ImageURL:      "https://img.example.com/tour.jpg",
		DateTimeLabel: "Mon, Feb 03 7:30 PM",
	}
}

// setupPreview 建立一個與 intake 相同的導覽環境：/preview 在行程內掛載，/transfer 送到 publisher
func setupPreview(t *testing.T) (*service.PreviewServiceImpl, *navigation.Dispatcher, *navigation.MemoryPublisher) {
	t.Helper()
	pub := navigation.NewMemoryPublisher(8)
	dispatcher := navigation.NewDispatcher(pub)
	svc := service.NewPreviewService(dispatcher, fallbackImage, 390)
	dispatcher.Register(navigation.RoutePreview, svc.Mount)
	return svc, dispatcher, pub
}

func mountPreview(t *testing.T, d *navigation.Dispatcher, ticket model.TicketDescriptor) uuid.UUID {
	t.Helper()
	h, err := d.Navigate(context.Background(), navigation.RoutePreview, ticket)
	require.NoError(t, err)
	return h.ID
}

func TestPreviewService_Mount(t *testing.T) {
	ctx := context.Background()

	t.Run("BuildsCardsFromDerivedSeats", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())

		resp, err := svc.Get(ctx, id)

		require.NoError(t, err)
		require.Len(t, resp.Cards, 3)
		assert.Equal(t, "12", resp.Cards[0].Seat)
		assert.Equal(t, "13", resp.Cards[1].Seat)
		assert.Equal(t, "14", resp.Cards[2].Seat)
		assert.Equal(t, "Standard Ticket", resp.Cards[0].Header)
		assert.Equal(t, "Ticketmaster.Verified", resp.Cards[0].Footer)
		assert.Equal(t, "Mon, Feb 03 7:30 PM • Moody Center - Austin", resp.Cards[0].Subtitle)
		assert.Equal(t, 0, resp.ActiveIndex)
		assert.Len(t, resp.Pagination, 3)
		assert.Equal(t, transfer.StateClosed, resp.Transfer.State)
	})

	t.Run("NoTicketData", func(t *testing.T) {
		svc, _, _ := setupPreview(t)
		h, err := navigation.NewHandoff(navigation.RoutePreview, model.TicketDescriptor{})
		require.NoError(t, err)

		err = svc.Mount(ctx, h)

		assert.ErrorIs(t, err, apperrors.ErrNoTicketData)
		_, err = svc.Get(ctx, h.ID)
		assert.ErrorIs(t, err, apperrors.ErrPreviewNotFound)
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		svc, _, _ := setupPreview(t)
		h := &navigation.Handoff{ID: uuid.New(), Route: navigation.RoutePreview, Payload: []byte(`"not an object"`)}

		err := svc.Mount(ctx, h)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("CountBelowOneShowsOneCard", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		ticket := sampleDescriptor()
		ticket.TicketCount = 0
		id := mountPreview(t, d, ticket)

		resp, err := svc.Get(ctx, id)

		require.NoError(t, err)
		require.Len(t, resp.Cards, 1)
		assert.Equal(t, "12", resp.Cards[0].Seat)
	})
}

func TestPreviewService_NotFound(t *testing.T) {
	svc, _, _ := setupPreview(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := svc.Get(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrPreviewNotFound)

	_, err = svc.GoTo(ctx, id, 1)
	assert.ErrorIs(t, err, apperrors.ErrPreviewNotFound)

	_, err = svc.OpenTransfer(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrPreviewNotFound)

	assert.ErrorIs(t, svc.Unmount(ctx, id), apperrors.ErrPreviewNotFound)
}

func TestPreviewService_Carousel(t *testing.T) {
	ctx := context.Background()

	t.Run("GoToClampsAndScrolls", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())

		resp, err := svc.GoTo(ctx, id, 7)

		require.NoError(t, err)
		assert.Equal(t, 2, resp.ActiveIndex)
		require.NotNil(t, resp.ScrollTo)
		assert.Equal(t, 780.0, resp.ScrollTo.Left)
		assert.Equal(t, "smooth", resp.ScrollTo.Behavior)
		assert.True(t, resp.Pagination[2].Active)
		assert.False(t, resp.Pagination[0].Active)
	})

	t.Run("ScrollSettledRounds", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())

		resp, err := svc.ScrollSettled(ctx, id, 590)

		require.NoError(t, err)
		assert.Equal(t, 2, resp.ActiveIndex)
		assert.Nil(t, resp.ScrollTo)
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())

		_, err := svc.GoTo(ctx, id, 2)
		require.NoError(t, err)
		_, err = svc.ScrollSettled(ctx, id, 390)
		require.NoError(t, err)

		resp, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.ActiveIndex)
	})

	t.Run("ResizeChangesOffsets", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())

		resp, err := svc.Resize(ctx, id, 400)
		require.NoError(t, err)
		assert.Equal(t, 400.0, resp.ViewportWidth)

		scroll, err := svc.GoTo(ctx, id, 1)
		require.NoError(t, err)
		assert.Equal(t, 400.0, scroll.ScrollTo.Left)
	})

	t.Run("ResizeRejectsNonPositiveWidth", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())

		_, err := svc.Resize(ctx, id, 0)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestPreviewService_ReportImageError(t *testing.T) {
	ctx := context.Background()
	svc, d, _ := setupPreview(t)
	id := mountPreview(t, d, sampleDescriptor())

	card, err := svc.ReportImageError(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, fallbackImage, card.ImageSrc)
	assert.True(t, card.UsingFallback)

	// 第二次回報不會改變結果
	card, err = svc.ReportImageError(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, fallbackImage, card.ImageSrc)

	resp, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/tour.jpg", resp.Cards[0].ImageSrc)
	assert.Equal(t, fallbackImage, resp.Cards[1].ImageSrc)

	_, err = svc.ReportImageError(ctx, id, 3)
	assert.ErrorIs(t, err, apperrors.ErrCardNotFound)
}

func TestPreviewService_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("ConfirmPublishesSelectedSeatsInOrder", func(t *testing.T) {
		svc, d, pub := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())

		opened, err := svc.OpenTransfer(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, transfer.StateOpen, opened.State)
		assert.Equal(t, 3, opened.Columns)
		assert.False(t, opened.CanConfirm)

		_, err = svc.ToggleSeat(ctx, id, "13")
		require.NoError(t, err)
		toggled, err := svc.ToggleSeat(ctx, id, "12")
		require.NoError(t, err)
		assert.Equal(t, "2 tickets selected", toggled.Summary)
		assert.True(t, toggled.CanConfirm)

		result, err := svc.ConfirmTransfer(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, navigation.RouteTransfer, result.Route)
		assert.Equal(t, 2, result.TicketCount)
		assert.Equal(t, []string{"12", "13"}, result.SelectedSeats)

		subCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		deliveries, err := pub.Subscribe(subCtx)
		require.NoError(t, err)

		select {
		case delivery := <-deliveries:
			assert.Equal(t, result.HandoffID, delivery.Data.ID)
			var payload model.TransferHandoff
			require.NoError(t, delivery.Data.Decode(&payload))
			assert.Equal(t, model.TransferHandoff{TicketCount: 2, SelectedSeats: []string{"12", "13"}}, payload)
		case <-subCtx.Done():
			t.Fatal("transfer handoff was not published")
		}

		resp, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, transfer.StateClosed, resp.Transfer.State)
	})

	t.Run("NothingSelected", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())
		_, err := svc.OpenTransfer(ctx, id)
		require.NoError(t, err)

		_, err = svc.ConfirmTransfer(ctx, id)

		assert.ErrorIs(t, err, apperrors.ErrNothingSelected)
	})

	t.Run("ToggleWhileClosed", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())

		_, err := svc.ToggleSeat(ctx, id, "12")

		assert.ErrorIs(t, err, apperrors.ErrTransferNotOpen)
	})

	t.Run("UnknownSeatIgnored", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())
		_, err := svc.OpenTransfer(ctx, id)
		require.NoError(t, err)

		resp, err := svc.ToggleSeat(ctx, id, "99")

		require.NoError(t, err)
		assert.Equal(t, "0 tickets selected", resp.Summary)
	})

	t.Run("CancelDiscardsSelection", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())
		_, err := svc.OpenTransfer(ctx, id)
		require.NoError(t, err)
		_, err = svc.ToggleSeat(ctx, id, "14")
		require.NoError(t, err)

		resp, err := svc.CancelTransfer(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, transfer.StateClosed, resp.State)

		reopened, err := svc.OpenTransfer(ctx, id)
		require.NoError(t, err)
		for _, opt := range reopened.Seats {
			assert.False(t, opt.Selected, opt.Seat)
		}
	})

	t.Run("HandoffFailureKeepsPopupOpen", func(t *testing.T) {
		nav := &mocks.NavigatorMock{}
		svc := service.NewPreviewService(nav, fallbackImage, 390)
		h, err := navigation.NewHandoff(navigation.RoutePreview, sampleDescriptor())
		require.NoError(t, err)
		require.NoError(t, svc.Mount(ctx, h))

		nav.On("Navigate", mock.Anything, navigation.RouteTransfer, mock.Anything).
			Return(nil, errors.New("stream unavailable")).Once()

		_, err = svc.OpenTransfer(ctx, h.ID)
		require.NoError(t, err)
		_, err = svc.ToggleSeat(ctx, h.ID, "12")
		require.NoError(t, err)

		_, err = svc.ConfirmTransfer(ctx, h.ID)
		assert.ErrorIs(t, err, apperrors.ErrUnexpected)

		resp, err := svc.Get(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, transfer.StateOpen, resp.Transfer.State)
		assert.True(t, resp.Transfer.Seats[0].Selected)
		nav.AssertExpectations(t)
	})
}

func TestPreviewService_UnmountAndSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("Unmount", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		id := mountPreview(t, d, sampleDescriptor())

		require.NoError(t, svc.Unmount(ctx, id))

		_, err := svc.Get(ctx, id)
		assert.ErrorIs(t, err, apperrors.ErrPreviewNotFound)
	})

	t.Run("SweepIdle", func(t *testing.T) {
		svc, d, _ := setupPreview(t)
		idle := mountPreview(t, d, sampleDescriptor())
		active := mountPreview(t, d, sampleDescriptor())

		// 只有 active 在之後被存取
		time.Sleep(20 * time.Millisecond)
		_, err := svc.Get(ctx, active)
		require.NoError(t, err)

		removed := svc.SweepIdle(time.Now(), 10*time.Millisecond)

		assert.Equal(t, 1, removed)
		_, err = svc.Get(ctx, idle)
		assert.ErrorIs(t, err, apperrors.ErrPreviewNotFound)
		_, err = svc.Get(ctx, active)
		assert.NoError(t, err)
	})
	t.Run("SweepDoesNotBlockOtherPreviewsDuringHandoff", func(t *testing.T) {
		nav := &mocks.NavigatorMock{}
		svc := service.NewPreviewService(nav, fallbackImage, 390)

		busy, err := navigation.NewHandoff(navigation.RoutePreview, sampleDescriptor())
		require.NoError(t, err)
		require.NoError(t, svc.Mount(ctx, busy))
		other, err := navigation.NewHandoff(navigation.RoutePreview, sampleDescriptor())
		require.NoError(t, err)
		require.NoError(t, svc.Mount(ctx, other))

		entered := make(chan struct{})
		release := make(chan struct{})
		nav.On("Navigate", mock.Anything, navigation.RouteTransfer, mock.Anything).Run(func(args mock.Arguments) {
			close(entered)
			<-release
		}).Return(&navigation.Handoff{ID: uuid.New(), Route: navigation.RouteTransfer}, nil).Once()

		_, err = svc.OpenTransfer(ctx, busy.ID)
		require.NoError(t, err)
		_, err = svc.ToggleSeat(ctx, busy.ID, "12")
		require.NoError(t, err)

		confirmed := make(chan error, 1)
		go func() {
			_, err := svc.ConfirmTransfer(ctx, busy.ID)
			confirmed <- err
		}()
		<-entered

		swept := make(chan int, 1)
		go func() { swept <- svc.SweepIdle(time.Now().Add(time.Hour), time.Minute) }()
		time.Sleep(50 * time.Millisecond)

		// busy 的 session 鎖被交接占住時，其他預覽仍可存取
		got := make(chan struct{})
		go func() {
			_, _ = svc.Get(ctx, other.ID)
			close(got)
		}()
		select {
		case <-got:
		case <-time.After(500 * time.Millisecond):
			close(release)
			t.Fatal("request for another preview blocked behind the sweep")
		}

		close(release)
		require.NoError(t, <-confirmed)
		assert.Equal(t, 2, <-swept)
		nav.AssertExpectations(t)
	})
}
