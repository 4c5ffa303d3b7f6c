// Package middleware holds the HTTP middleware stack.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/utils"
)

type contextKey string

const subjectKey contextKey = "auth_subject"

// Auth validates HS256 bearer tokens. A zero-value secret disables the
// middleware entirely.
type Auth struct {
	secret []byte
	logger *zap.Logger
}

// NewAuth creates the auth middleware.
func NewAuth(secret string, logger *zap.Logger) *Auth {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auth{secret: []byte(secret), logger: logger}
}

// Enabled reports whether a secret is configured.
func (a *Auth) Enabled() bool {
	return len(a.secret) > 0
}

// RequireAuth rejects requests without a valid bearer token. When no secret
// is configured the middleware passes everything through.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearer(r)
		if token == "" {
			a.logger.Warn("missing bearer token", zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		subject, err := a.validate(token)
		if err != nil {
			a.logger.Warn("token validation failed",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) validate(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	return subject, nil
}

// SubjectFromContext returns the authenticated subject, empty when the
// request was not authenticated.
func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey).(string); ok {
		return s
	}
	return ""
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
