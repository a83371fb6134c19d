package sqlite

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

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u      domain.User
		secret sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.MFAEnabled, &secret, &u.CreatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.MFASecret = mapNullStringPtr(secret)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, mfa_enabled, mfa_secret, created_at)
		 VALUES (?, ?, ?, 0, NULL, ?)
		 RETURNING id`,
		u.Username, u.PasswordHash, u.Role, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return domain.User{}, mapUnique(err)
	}

	u.MFAEnabled = false
	u.MFASecret = nil
	return u, nil
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID int64, secret string) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = ? WHERE id = ?`, secret, userID))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID int64) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = 1 WHERE id = ? AND mfa_secret IS NOT NULL`, userID))
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID int64) error {
	return mustAffect(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = 0, mfa_secret = NULL WHERE id = ?`, userID))
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID int64) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID))
}
