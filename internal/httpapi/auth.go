package httpapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookie = "admin_session"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	if !s.checkCredentials(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.sessions.Create(c.Request.Context(), req.Username)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.SetCookie(sessionCookie, token, int(s.cfg.Admin.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})

	s.events.LogEvent(c.Request.Context(), "Admin login", req.Username)
}

func (s *Server) handleLogout(c *gin.Context) {
	token, _ := c.Cookie(sessionCookie)
	if err := s.sessions.Destroy(c.Request.Context(), token); err != nil {
		s.logger.Warn("session destroy failed", zap.Error(err))
	}

	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleCheckAuth(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	username, err := s.sessions.Validate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true, "username": username})
}

// checkCredentials verifies the admin login. A configured bcrypt hash takes
// precedence over the plain password.
func (s *Server) checkCredentials(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Admin.Username)) != 1 {
		return false
	}

	if s.cfg.Admin.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.Admin.PasswordHash), []byte(password)) == nil
	}
	if s.cfg.Admin.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Admin.Password)) == 1
}

// requireAuth rejects requests without a valid session cookie.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		if _, err := s.sessions.Validate(c.Request.Context(), token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Next()
	}
}
