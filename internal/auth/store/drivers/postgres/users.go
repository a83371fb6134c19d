package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/webtemplate/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, password_hash, role, mfa_enabled, mfa_secret, created_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u      domain.User
		secret sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.MFAEnabled, &secret, &u.CreatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	if secret.Valid {
		u.MFASecret = &secret.String
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		u.Username, u.PasswordHash, u.Role, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return domain.User{}, mapPgError(err)
	}

	u.MFAEnabled = false
	u.MFASecret = nil
	return u, nil
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID int64, secret string) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = $1 WHERE id = $2`, secret, userID))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID int64) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = TRUE WHERE id = $1 AND mfa_secret IS NOT NULL`, userID))
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID int64) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = FALSE, mfa_secret = NULL WHERE id = $1`, userID))
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID))
}
