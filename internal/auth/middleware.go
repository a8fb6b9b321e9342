package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/authgate/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUser = "auth_user"
)

// RequireSession returns a middleware that resolves the session cookie
// and aborts with 401 when no live session is presented. The resolved
// user is stored in the gin context for handlers behind it.
func (ac *Controller) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrNotAuthenticated.Error(),
			})
			return
		}

		user, err := ac.service.WhoAmI(token)
		if err != nil {
			// A dead session is a 401; a store failure is not the
			// client's fault and must not read as one.
			if errors.Is(err, ErrNotAuthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": ErrNotAuthenticated.Error(),
				})
				return
			}
			log.Printf("session resolution failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
			})
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// CurrentUser retrieves the authenticated user from the gin context.
// Returns nil outside RequireSession-protected routes.
func CurrentUser(c *gin.Context) *entities.User {
	if v, exists := c.Get(ContextKeyUser); exists {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}
