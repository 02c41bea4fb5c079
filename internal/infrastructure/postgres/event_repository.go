package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/repository"
)

const eventColumns = `id, title, description, status, streaming_url, start_at, end_at, author, category`

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (entity.Event, error) {
	var e entity.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Status, &e.StreamingURL, &e.StartAt, &e.EndAt, &e.Author, &e.Category)
	if err != nil {
		return entity.Event{}, err
	}
	e.StartAt, e.EndAt = e.StartAt.UTC(), e.EndAt.UTC()
	return e, nil
}

func (r *EventRepository) Create(ctx context.Context, e entity.Event) (entity.Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (id, title, description, status, streaming_url, start_at, end_at, author, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+eventColumns,
		e.ID, e.Title, e.Description, e.Status, e.StreamingURL, e.StartAt, e.EndAt, e.Author, e.Category)

	created, err := scanEvent(row)
	if err != nil {
		return entity.Event{}, mapErr(err, "event")
	}
	return created, nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (entity.Event, bool, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Event{}, false, nil
	}
	if err != nil {
		return entity.Event{}, false, apperr.Internal(err)
	}
	return e, true, nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]entity.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY start_at, id`)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	out := make([]entity.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// Update rewrites the row under id, moving it to e.ID in the same statement.
// A taken target key fails with a conflict and leaves the row untouched.
func (r *EventRepository) Update(ctx context.Context, e entity.Event, id string) (entity.Event, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE events
		SET id = $2, title = $3, description = $4, status = $5, streaming_url = $6,
		    start_at = $7, end_at = $8, author = $9, category = $10
		WHERE id = $1
		RETURNING `+eventColumns,
		id, e.ID, e.Title, e.Description, e.Status, e.StreamingURL, e.StartAt, e.EndAt, e.Author, e.Category)

	updated, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Event{}, apperr.NotFoundf("event %s", id)
	}
	if err != nil {
		return entity.Event{}, mapErr(err, "event")
	}
	return updated, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ repository.EventRepository = (*EventRepository)(nil)
