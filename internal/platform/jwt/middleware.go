package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"loan_backend/internal/api"
	authdomain "loan_backend/internal/feature/auth/domain"
)

// ContextUserID is the gin context key holding the authenticated user's ID (uint).
const ContextUserID = "userID"

// Authenticator resolves a bearer token to a user ID.
// Following Go convention: interfaces are defined by the consumer, not the provider.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uint, error)
}

// AuthRequired returns a Gin middleware that authenticates the bearer token
// and restricts access to known users only.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract bearer token (an absent or non-bearer header yields an empty token)
		token := bearerToken(c.GetHeader("Authorization"))

		// 2. Resolve token -> user
		userID, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			status, msg := authFailure(err)
			if status == http.StatusInternalServerError {
				slog.Error("authentication failed", "error", err, "path", c.FullPath())
			} else {
				slog.Warn("authentication rejected", "reason", msg, "path", c.FullPath(), "remote_addr", c.ClientIP())
				c.Header("WWW-Authenticate", "Bearer")
			}
			c.AbortWithStatusJSON(status, api.ErrorResponse{Error: msg})
			return
		}

		// 3. Pass control to the next handler
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the authenticated user's ID stored by AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// bearerToken extracts the credential from an Authorization header.
// The scheme name is matched case-insensitively.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authFailure maps an authentication error to a status code and a stable message.
func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, authdomain.ErrMissingCredential):
		return http.StatusUnauthorized, authdomain.ErrMissingCredential.Error()
	case errors.Is(err, authdomain.ErrExpiredToken):
		return http.StatusUnauthorized, authdomain.ErrExpiredToken.Error()
	case errors.Is(err, authdomain.ErrMalformedToken):
		return http.StatusUnauthorized, authdomain.ErrMalformedToken.Error()
	case errors.Is(err, authdomain.ErrUnknownSubject):
		return http.StatusUnauthorized, authdomain.ErrUnknownSubject.Error()
	default:
		return http.StatusInternalServerError, api.InternalError
	}
}
