package mocks

import (
	"context"

	"go-gin-ticket-preview/internal/model"
	"go-gin-ticket-preview/internal/navigation"
	"go-gin-ticket-preview/internal/service"
	"go-gin-ticket-preview/pkg/notice"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type TicketRepositoryMock struct {
	mock.Mock
}

func (m *TicketRepositoryMock) Insert(ctx context.Context, ticket *model.TicketRecord) (*model.TicketRecord, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketRecord), args.Error(1)
}

func (m *TicketRepositoryMock) FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.TicketRecord, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketRecord), args.Error(1)
}

type NavigatorMock struct {
	mock.Mock
}

func (m *NavigatorMock) Navigate(ctx context.Context, route navigation.Route, payload any) (*navigation.Handoff, error) {
	args := m.Called(ctx, route, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*navigation.Handoff), args.Error(1)
}

type IntakeServiceMock struct {
	mock.Mock
}

func (m *IntakeServiceMock) Submit(ctx context.Context, form model.TicketForm, notifier notice.Notifier) (*service.SubmitResult, error) {
	args := m.Called(ctx, form, notifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}

func (m *IntakeServiceMock) Normalize(form model.TicketForm) (model.TicketDescriptor, error) {
	args := m.Called(form)
	return args.Get(0).(model.TicketDescriptor), args.Error(1)
}

type PreviewServiceMock struct {
	mock.Mock
}

func (m *PreviewServiceMock) Mount(ctx context.Context, h *navigation.Handoff) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *PreviewServiceMock) Get(ctx context.Context, id uuid.UUID) (*service.PreviewResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PreviewResponse), args.Error(1)
}

func (m *PreviewServiceMock) Unmount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PreviewServiceMock) Resize(ctx context.Context, id uuid.UUID, width float64) (*service.PreviewResponse, error) {
	args := m.Called(ctx, id, width)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PreviewResponse), args.Error(1)
}

func (m *PreviewServiceMock) GoTo(ctx context.Context, id uuid.UUID, index int) (*service.ScrollResponse, error) {
	args := m.Called(ctx, id, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ScrollResponse), args.Error(1)
}

func (m *PreviewServiceMock) ScrollSettled(ctx context.Context, id uuid.UUID, offset float64) (*service.ScrollResponse, error) {
	args := m.Called(ctx, id, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ScrollResponse), args.Error(1)
}

func (m *PreviewServiceMock) ReportImageError(ctx context.Context, id uuid.UUID, cardIndex int) (*service.CardResponse, error) {
	args := m.Called(ctx, id, cardIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CardResponse), args.Error(1)
}

func (m *PreviewServiceMock) OpenTransfer(ctx context.Context, id uuid.UUID) (*service.TransferResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransferResponse), args.Error(1)
}

func (m *PreviewServiceMock) ToggleSeat(ctx context.Context, id uuid.UUID, seatLabel string) (*service.TransferResponse, error) {
	args := m.Called(ctx, id, seatLabel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransferResponse), args.Error(1)
}

func (m *PreviewServiceMock) ConfirmTransfer(ctx context.Context, id uuid.UUID) (*service.TransferResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransferResult), args.Error(1)
}

func (m *PreviewServiceMock) CancelTransfer(ctx context.Context, id uuid.UUID) (*service.TransferResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TransferResponse), args.Error(1)
}
