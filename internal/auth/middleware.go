package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jcarver/marketboard/internal/logging"
)

type contextKey string

const subjectKey contextKey = "auth.subject"

// Middleware guards operational endpoints with an HS256 bearer token
// signed with a shared secret.
type Middleware struct {
	secret []byte
	logger *logging.Logger
}

func NewMiddleware(secret string, logger *logging.Logger) *Middleware {
	return &Middleware{secret: []byte(secret), logger: logger}
}

// RequireAuth rejects requests without a valid bearer token. When no secret
// is configured the guarded endpoints are disabled outright.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(m.secret) == 0 {
			http.Error(w, "Admin API disabled", http.StatusForbidden)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			if m.logger != nil {
				m.logger.Warn("Rejected admin token", logging.WithError(err))
			}
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		subject, _ := claims.GetSubject()
		next(w, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))
	}
}

// GetSubject returns the authenticated token subject, if any.
func GetSubject(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}
