package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/obra-coop/obranet/internal/api/respond"
	"github.com/obra-coop/obranet/internal/metrics"
	"github.com/obra-coop/obranet/internal/storage"
)

// Handler handles authentication endpoints.
type Handler struct {
	users storage.UserRepository
	jwt   *JWTService
}

// NewHandler creates a new auth handler.
func NewHandler(users storage.UserRepository, jwt *JWTService) *Handler {
	return &Handler{users: users, jwt: jwt}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Login authenticates by email and password and issues an access token.
// Invalid email and invalid password produce the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respond.BadRequest(w, "email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil || !CheckPassword(user.PasswordHash, req.Password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		log.Printf("failed login for %s from %s", req.Email, r.RemoteAddr)
		respond.Unauthorized(w)
		return
	}

	token, err := h.jwt.GenerateToken(user)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	respond.OK(w, LoginResponse{
		AccessToken: token,
		ExpiresIn:   h.jwt.TTLSeconds(),
		TokenType:   "Bearer",
	})
}
