package repository

import (
	"context"
	"database/sql"
	"fmt"

	"battlefield-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type UserRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUserRepository(sqlDB *sql.DB, logger zerolog.Logger) *UserRepository {
	return &UserRepository{db: sqlDB, logger: logger}
}

const userColumns = `id, username, email, password_hash, player_id, player_name, avatar_url, bio, is_verified, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string, playerID, playerName *string) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, player_id, player_name)
		VALUES (?, ?, ?, ?, ?)
	`, username, email, passwordHash, playerID, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted user id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetByLogin looks a user up by username or email, matching either column
// against the same value.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = ? OR email = ?
	`, login, login)
	return scanUser(row)
}

func (r *UserRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM users WHERE username = ? OR email = ?
	`, username, email).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateProfile overwrites only the fields that are provided; nil fields
// keep their current value.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, playerName, playerID, avatarURL, bio *string) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET player_name = COALESCE(?, player_name),
		    player_id = COALESCE(?, player_id),
		    avatar_url = COALESCE(?, avatar_url),
		    bio = COALESCE(?, bio),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, playerName, playerID, avatarURL, bio, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, passwordHash, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update password")
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var playerID, playerName, avatarURL, bio sql.NullString
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&playerID, &playerName, &avatarURL, &bio,
		&u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if playerID.Valid {
		u.PlayerID = &playerID.String
	}
	if playerName.Valid {
		u.PlayerName = &playerName.String
	}
	if avatarURL.Valid {
		u.AvatarURL = &avatarURL.String
	}
	if bio.Valid {
		u.Bio = &bio.String
	}
	return &u, nil
}
