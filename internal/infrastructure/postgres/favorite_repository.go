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

const favoriteColumns = `id, account_id, event_id`

type FavoriteRepository struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepository(pool *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

func scanFavorite(row pgx.Row) (entity.Favorite, error) {
	var f entity.Favorite
	err := row.Scan(&f.ID, &f.AccountID, &f.EventID)
	return f, err
}

func (r *FavoriteRepository) Create(ctx context.Context, f entity.Favorite) (entity.Favorite, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO favorites (id, account_id, event_id)
		VALUES ($1, $2, $3)
		RETURNING `+favoriteColumns,
		f.ID, f.AccountID, f.EventID)

	created, err := scanFavorite(row)
	if err != nil {
		return entity.Favorite{}, mapErr(err, "favorite")
	}
	return created, nil
}

func (r *FavoriteRepository) findOne(ctx context.Context, query string, args ...any) (entity.Favorite, bool, error) {
	f, err := scanFavorite(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Favorite{}, false, nil
	}
	if err != nil {
		return entity.Favorite{}, false, apperr.Internal(err)
	}
	return f, true, nil
}

func (r *FavoriteRepository) FindByID(ctx context.Context, id string) (entity.Favorite, bool, error) {
	return r.findOne(ctx, `SELECT `+favoriteColumns+` FROM favorites WHERE id = $1`, id)
}

func (r *FavoriteRepository) FindByPair(ctx context.Context, accountID, eventID string) (entity.Favorite, bool, error) {
	return r.findOne(ctx, `SELECT `+favoriteColumns+` FROM favorites WHERE account_id = $1 AND event_id = $2`, accountID, eventID)
}

func (r *FavoriteRepository) list(ctx context.Context, query string, args ...any) ([]entity.Favorite, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	out := make([]entity.Favorite, 0)
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (r *FavoriteRepository) FindByAccount(ctx context.Context, accountID string) ([]entity.Favorite, error) {
	return r.list(ctx, `SELECT `+favoriteColumns+` FROM favorites WHERE account_id = $1 ORDER BY event_id, id`, accountID)
}

func (r *FavoriteRepository) FindAll(ctx context.Context) ([]entity.Favorite, error) {
	return r.list(ctx, `SELECT `+favoriteColumns+` FROM favorites ORDER BY account_id, event_id, id`)
}

// Update rewrites the row under id. Both the primary key and the pair
// constraint are checked by the same statement.
func (r *FavoriteRepository) Update(ctx context.Context, f entity.Favorite, id string) (entity.Favorite, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE favorites
		SET id = $2, account_id = $3, event_id = $4
		WHERE id = $1
		RETURNING `+favoriteColumns,
		id, f.ID, f.AccountID, f.EventID)

	updated, err := scanFavorite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Favorite{}, apperr.NotFoundf("favorite %s", id)
	}
	if err != nil {
		return entity.Favorite{}, mapErr(err, "favorite")
	}
	return updated, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ repository.FavoriteRepository = (*FavoriteRepository)(nil)
