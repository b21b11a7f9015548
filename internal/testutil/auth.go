package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"logiscore/internal/auth"
	"logiscore/internal/config"
	"logiscore/internal/models"
	"logiscore/internal/repository"

	"github.com/google/uuid"
)

// AuthHelper issues access tokens backed by real session rows
type AuthHelper struct {
	Service  *auth.Service
	sessions *repository.SessionRepository
}

// NewAuthHelper creates a new auth helper with an ephemeral signing key
func NewAuthHelper(db *sql.DB) *AuthHelper {
	return &AuthHelper{
		Service: auth.NewService(&config.JWTConfig{
			Expiration:        time.Hour,
			RefreshExpiration: 24 * time.Hour,
		}),
		sessions: repository.NewSessionRepository(db),
	}
}

// Login issues an access token for user and stores its session. It returns
// the token and the session id.
func (h *AuthHelper) Login(t *testing.T, user *models.User) (string, uuid.UUID) {
	t.Helper()

	identity := auth.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: uuid.New(),
	}
	issued, err := h.Service.GenerateToken(identity)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	err = h.sessions.Create(context.Background(), &models.Session{
		UserID:    user.ID,
		SessionID: identity.SessionID,
		JTI:       issued.JTI,
		TokenType: auth.TokenTypeAccess,
		ExpiresAt: issued.ExpiresAt,
	})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	return issued.Token, identity.SessionID
}

// AddAuthHeader adds an authorization header to the request
func AddAuthHeader(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}
