package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/authgate/internal/config"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// credentialsRequest is the JSON body for register and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Controller handles authentication HTTP endpoints. It is the only
// layer that touches the session cookie; the service below it deals in
// plain tokens.
type Controller struct {
	service *Service
	config  config.Auth
}

// NewController creates a new authentication controller.
func NewController(service *Service, cfg config.Auth) *Controller {
	return &Controller{
		service: service,
		config:  cfg,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/auth/register", ac.Register)
	router.POST("/auth/login", ac.Login)
	router.POST("/auth/logout", ac.Logout)
	router.GET("/auth/me", ac.RequireSession(), ac.CurrentUser)
}

// Register handles new account creation. Successful registration does
// not log the user in.
func (ac *Controller) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	user, err := ac.service.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameRequired),
			errors.Is(err, ErrPasswordTooShort),
			errors.Is(err, ErrDuplicateUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("register failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "registered",
		"username": user.Username,
	})
}

// Login verifies credentials and binds the issued token to the session
// cookie.
func (ac *Controller) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	token, user, err := ac.service.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameRequired), errors.Is(err, ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			log.Printf("login failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	ac.setSessionCookie(c, token, int(ac.cookieMaxAge()))
	c.JSON(http.StatusOK, gin.H{
		"message":  "logged in",
		"username": user.Username,
	})
}

// Logout revokes the current session and clears the cookie. It always
// succeeds, with or without a valid session.
func (ac *Controller) Logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookieName); err == nil {
		if err := ac.service.Logout(token); err != nil {
			log.Printf("logout failed to revoke session: %v", err)
		}
	}

	ac.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// CurrentUser returns the authenticated user's profile.
func (ac *Controller) CurrentUser(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrNotAuthenticated.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	})
}

func (ac *Controller) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", ac.config.SecureCookies, true)
}

// cookieMaxAge mirrors the session TTL in the cookie. Zero keeps the
// cookie for the browser session; the token itself never expires then.
func (ac *Controller) cookieMaxAge() int64 {
	if ac.config.SessionTTL <= 0 {
		return 0
	}
	return int64(ac.config.SessionTTL.Seconds())
}
