package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"logiscore/internal/auth"
	"logiscore/internal/models"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	UserRoleKey  contextKey = "user_role"
	SessionIDKey contextKey = "session_id"
)

// SessionStore looks up the session a token was issued for
type SessionStore interface {
	GetByJTI(ctx context.Context, jti string) (*models.Session, error)
	Touch(ctx context.Context, id uuid.UUID) error
}

// AuthMiddleware validates JWT access tokens
type AuthMiddleware struct {
	authService *auth.Service
	sessions    SessionStore
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *auth.Service, sessions SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		sessions:    sessions,
	}
}

// Authenticate rejects requests without a valid access token and adds the
// caller's identity to the context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.verify(r.Context(), token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// OptionalAuth adds the caller's identity when a valid token is present.
// Requests with a missing or invalid token continue unauthenticated.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
			if claims, err := m.verify(r.Context(), token); err == nil {
				r = r.WithContext(withClaims(r.Context(), claims))
			}
		}

		next.ServeHTTP(w, r)
	})
}

// verify checks the signature, the token type and that the session has not
// been revoked by a logout
func (m *AuthMiddleware) verify(ctx context.Context, token string) (*auth.JWTClaims, error) {
	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, auth.ErrInvalidToken
	}

	session, err := m.sessions.GetByJTI(ctx, claims.ID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	_ = m.sessions.Touch(ctx, session.ID)

	return claims, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func withClaims(ctx context.Context, claims *auth.JWTClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
	ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)
	return ctx
}

// GetUserID retrieves the user ID from the request context
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmail retrieves the user email from the request context
func GetUserEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(UserEmailKey).(string)
	return email, ok
}

// GetUserRole retrieves the user role from the request context
func GetUserRole(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(UserRoleKey).(string)
	return role, ok
}

// GetSessionID retrieves the session ID from the request context
func GetSessionID(r *http.Request) (uuid.UUID, bool) {
	sessionID, ok := r.Context().Value(SessionIDKey).(uuid.UUID)
	return sessionID, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
