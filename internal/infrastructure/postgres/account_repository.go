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

const accountColumns = `id, email, username, role, password_hash, created_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (entity.Account, error) {
	var (
		a    entity.Account
		role string
	)
	if err := row.Scan(&a.ID, &a.Email, &a.Username, &role, &a.PasswordHash, &a.CreatedAt); err != nil {
		return entity.Account{}, err
	}
	a.Role = entity.Role(role)
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a entity.Account) (entity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, username, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		a.ID, a.Email, a.Username, string(a.Role), a.PasswordHash, a.CreatedAt)

	created, err := scanAccount(row)
	if err != nil {
		return entity.Account{}, mapErr(err, "account")
	}
	return created, nil
}

func (r *AccountRepository) findOne(ctx context.Context, where string, arg any) (entity.Account, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Account{}, false, nil
	}
	if err != nil {
		return entity.Account{}, false, apperr.Internal(err)
	}
	return a, true, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (entity.Account, bool, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (entity.Account, bool, error) {
	return r.findOne(ctx, `email = $1`, email)
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]entity.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	out := make([]entity.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// Update replaces the row stored under id. Account ids never change; a
// missing row is reported before an id mismatch.
func (r *AccountRepository) Update(ctx context.Context, a entity.Account, id string) (entity.Account, error) {
	if a.ID != id {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return entity.Account{}, apperr.Internal(err)
		}
		if !exists {
			return entity.Account{}, apperr.NotFoundf("account %s", id)
		}
		return entity.Account{}, apperr.Validationf("account id is immutable")
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET email = $2, username = $3, role = $4, password_hash = $5
		WHERE id = $1
		RETURNING `+accountColumns,
		id, a.Email, a.Username, string(a.Role), a.PasswordHash)

	updated, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Account{}, apperr.NotFoundf("account %s", id)
	}
	if err != nil {
		return entity.Account{}, mapErr(err, "account")
	}
	return updated, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
