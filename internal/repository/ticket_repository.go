package repository

import (
	"context"
	"errors"

	"go-gin-ticket-preview/internal/model"
	apperrors "go-gin-ticket-preview/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	Insert(ctx context.Context, ticket *model.TicketRecord) (*model.TicketRecord, error)
	FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.TicketRecord, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketRepositoryImpl) Insert(ctx context.Context, ticket *model.TicketRecord) (*model.TicketRecord, error) {
	if ticket.TicketID == uuid.Nil {
		ticket.TicketID = uuid.New()
	}

	query := `
		INSERT INTO tickets (
		ticket_id, sec, row_number, seat, title, venue, date_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		ticket.TicketID, ticket.Sec, ticket.RowNumber, ticket.Seat,
		ticket.Title, ticket.Venue, ticket.DateTime,
	).Scan(
		&ticket.ID,
		&ticket.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.TicketRecord, error) {
	query := `
		SELECT id, ticket_id, sec, row_number, seat,
				title, venue, date_time, created_at
		FROM tickets
		WHERE ticket_id = $1
	`

	var ticket model.TicketRecord
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.Sec,
		&ticket.RowNumber,
		&ticket.Seat,
		&ticket.Title,
		&ticket.Venue,
		&ticket.DateTime,
		&ticket.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return &ticket, nil
}
