package service

import (
	"context"
	"database/sql"
	"errors"

	"battlefield-tracker/internal/auth"
	"battlefield-tracker/internal/constants"
	"battlefield-tracker/internal/domain"
	"battlefield-tracker/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrUserExists    = errors.New("username or email already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("current password is incorrect")
)

type UserService struct {
	repo   *repository.UserRepository
	auth   *auth.Service
	logger zerolog.Logger
}

func NewUserService(repo *repository.UserRepository, authSvc *auth.Service, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, auth: authSvc, logger: logger}
}

// Register creates a user and issues a token. Password length and email
// shape are validated at the API boundary.
func (s *UserService) Register(ctx context.Context, username, email, password string, playerID, playerName *string) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	exists, err := s.repo.Exists(ctx, username, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrUserExists
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.repo.Create(ctx, username, email, hash, playerID, playerName)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("failed to create user")
		return nil, "", err
	}

	token, err := s.auth.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, token, nil
}

// Login authenticates by username or email and issues a token.
func (s *UserService) Login(ctx context.Context, login, password string) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	user, err := s.repo.GetByLogin(ctx, login)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !s.auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := s.auth.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	return user, token, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, playerName, playerID, avatarURL, bio *string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	user, err := s.repo.UpdateProfile(ctx, id, playerName, playerID, avatarURL, bio)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("profile updated")
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if !s.auth.CheckPassword(currentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", id).Msg("password changed")
	return nil
}
