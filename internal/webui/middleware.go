package webui

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hamkharj/internal/session"
)

// loggingMiddleware logs every UI request with a generated request id.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		c.Next()

		s.logger.Info("UI request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// requireApproved is the route guard every protected view sits behind:
// Anonymous redirects to the login screen with a return path, Unapproved to
// the waiting screen, Approved falls through to the handler.
func (s *Server) requireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := s.session.State()
		if !state.IsResolved() {
			state = s.session.Resolve(c.Request.Context())
		}

		switch state {
		case session.StateAnonymous:
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
		case session.StateUnapproved:
			c.Redirect(http.StatusFound, "/waiting-approval")
			c.Abort()
		default:
			c.Next()
		}
	}
}

// requireAdmin layers the admin check on top of requireApproved. The check
// is a courtesy redirect; the server enforces authorization on every call.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := s.session.User()
		if user == nil || !user.IsAdmin {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

// redirectResolved sends already-authenticated visitors of the entry screens
// to where their state belongs.
func (s *Server) redirectResolved() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := s.session.State()
		if !state.IsResolved() {
			state = s.session.Resolve(c.Request.Context())
		}

		switch state {
		case session.StateApproved:
			target := c.Query("next")
			if target == "" || target[0] != '/' {
				target = "/dashboard"
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
		case session.StateUnapproved:
			c.Redirect(http.StatusFound, "/waiting-approval")
			c.Abort()
		default:
			c.Next()
		}
	}
}
