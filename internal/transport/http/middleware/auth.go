package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nbatyrov/contactbook/internal/domain"
	"github.com/nbatyrov/contactbook/internal/repository"
	"github.com/nbatyrov/contactbook/internal/token"
)

const (
	errUnauthorized = "Not authorized"

	// UserKey is the gin context key holding the resolved *domain.User.
	UserKey = "user"
	// UserIDKey is the gin context key holding the resolved user ID.
	UserIDKey = "userID"
)

// Auth validates a Bearer token, resolves the user it names, and checks
// the token against the stored session token. Single active session: a
// signature-valid token that is not the current session is rejected.
// Fails closed with 401 on every branch.
func Auth(issuer *token.Issuer, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c)
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims, err := issuer.Verify(raw)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.Subject)
		if err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					gin.H{"message": "Internal server error"})
				return
			}
			abortUnauthorized(c)
			return
		}

		if user.SessionToken == nil || *user.SessionToken != raw {
			abortUnauthorized(c)
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errUnauthorized})
}
