package server

import (
	"errors"
	"net/http"
	"strconv"

	"battlefield-tracker/internal/auth"
	"battlefield-tracker/internal/domain"
	"battlefield-tracker/internal/middleware"
	"battlefield-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type registerRequest struct {
	Username   string  `json:"username" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6"`
	PlayerID   *string `json:"playerId"`
	PlayerName *string `json:"playerName"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	PlayerName *string `json:"playerName"`
	PlayerID   *string `json:"playerId"`
	AvatarURL  *string `json:"avatarUrl"`
	Bio        *string `json:"bio"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := s.validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, token, err := s.userSvc.Register(r.Context(), req.Username, req.Email, req.Password, req.PlayerID, req.PlayerName)
	if errors.Is(err, service.ErrUserExists) {
		writeError(w, http.StatusConflict, "Username or email already exists")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("registration failed")
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := s.validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, token, err := s.userSvc.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	user, err := s.userSvc.Get(r.Context(), claims.UserID)
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch user data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.userSvc.UpdateProfile(r.Context(), claims.UserID, req.PlayerName, req.PlayerID, req.AvatarURL, req.Bio)
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := s.validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	err := s.userSvc.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to change password")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
	}
}

// handleGetUser is the public user lookup; it hides the email address.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := s.userSvc.Get(r.Context(), id)
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": publicUser(user)})
}

func publicUser(u *domain.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"playerId":   u.PlayerID,
		"playerName": u.PlayerName,
		"avatarUrl":  u.AvatarURL,
		"bio":        u.Bio,
		"createdAt":  u.CreatedAt,
	}
}

// validateRequest maps the first validation failure to the message the
// frontend expects.
func (s *Server) validateRequest(req any) (string, bool) {
	err := s.validate.Struct(req)
	if err == nil {
		return "", true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request", false
	}

	fe := verrs[0]
	switch {
	case fe.Tag() == "email":
		return "Invalid email format", false
	case fe.Tag() == "min" && fe.Field() == "Password":
		return "Password must be at least 6 characters long", false
	case fe.Tag() == "min" && fe.Field() == "NewPassword":
		return "New password must be at least 6 characters long", false
	default:
		return fe.Field() + " is required", false
	}
}
