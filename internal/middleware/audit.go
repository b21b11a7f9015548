package middleware

import (
	"log/slog"
	"net/http"
)

// AuditLog records moderation actions taken by administrators
type AuditLog struct {
	logger *slog.Logger
}

// NewAuditLog creates an audit logger. A nil logger uses slog.Default.
func NewAuditLog(logger *slog.Logger) *AuditLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLog{logger: logger.With("component", "audit")}
}

// Log wraps a handler and records the action with the acting user and the
// resulting status once the handler returns
func (a *AuditLog) Log(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"action", action,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"ip_address", getIP(r),
				"user_agent", r.UserAgent(),
			}
			if userID, ok := GetUserID(r); ok {
				attrs = append(attrs, "user_id", userID.String())
			}

			if wrapped.statusCode >= 400 {
				a.logger.Warn("Audited action failed", attrs...)
				return
			}
			a.logger.Info("Audited action", attrs...)
		})
	}
}
