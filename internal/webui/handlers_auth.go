package webui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hamkharj/internal/api"
	"hamkharj/internal/session"
)

type loginData struct {
	Next     string
	Username string
	Error    string
	Flash    *Flash
}

type registerData struct {
	FirstName string
	LastName  string
	Username  string
	Error     string
}

func (s *Server) handleLoginPage(c *gin.Context) {
	s.render(c, http.StatusOK, "login.html", loginData{
		Next:  c.Query("next"),
		Flash: popFlash(c),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := c.PostForm("next")

	if username == "" || password == "" {
		s.render(c, http.StatusBadRequest, "login.html", loginData{
			Next:     next,
			Username: username,
			Error:    "نام کاربری و رمز عبور الزامی است",
		})
		return
	}

	state, err := s.session.Login(c.Request.Context(), username, password)
	if err != nil {
		s.logger.Warn("Login failed",
			zap.String("username", username),
			zap.Error(err))
		s.render(c, http.StatusUnauthorized, "login.html", loginData{
			Next:     next,
			Username: username,
			Error:    loginErrorMessage(err),
		})
		return
	}

	if state == session.StateUnapproved {
		c.Redirect(http.StatusFound, "/waiting-approval")
		return
	}
	if next == "" || next[0] != '/' {
		next = "/dashboard"
	}
	c.Redirect(http.StatusFound, next)
}

func loginErrorMessage(err error) string {
	if api.IsUnauthorized(err) {
		return "نام کاربری یا رمز عبور اشتباه است"
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "ورود ناموفق بود، دوباره تلاش کنید"
}

func (s *Server) handleRegisterPage(c *gin.Context) {
	s.render(c, http.StatusOK, "register.html", registerData{})
}

func (s *Server) handleRegister(c *gin.Context) {
	req := api.RegisterRequest{
		FirstName: strings.TrimSpace(c.PostForm("first_name")),
		LastName:  strings.TrimSpace(c.PostForm("last_name")),
		Username:  strings.TrimSpace(c.PostForm("username")),
		Password:  c.PostForm("password"),
	}

	data := registerData{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	}

	if req.FirstName == "" || req.LastName == "" || req.Username == "" || req.Password == "" {
		data.Error = "همه فیلدها الزامی است"
		s.render(c, http.StatusBadRequest, "register.html", data)
		return
	}

	if _, err := s.client.Register(c.Request.Context(), req); err != nil {
		s.logger.Warn("Registration failed",
			zap.String("username", req.Username),
			zap.Error(err))
		data.Error = apiErrorMessage(err, "ثبت‌نام ناموفق بود")
		s.render(c, http.StatusBadRequest, "register.html", data)
		return
	}

	setFlash(c, "success", "ثبت‌نام انجام شد. پس از تایید مدیر می‌توانید وارد شوید.")
	c.Redirect(http.StatusFound, "/login")
}

// handleWaitingApproval re-resolves on every visit so a freshly approved
// member moves on with a plain refresh.
func (s *Server) handleWaitingApproval(c *gin.Context) {
	switch s.session.Resolve(c.Request.Context()) {
	case session.StateApproved:
		c.Redirect(http.StatusFound, "/dashboard")
		return
	case session.StateAnonymous:
		c.Redirect(http.StatusFound, "/login")
		return
	}

	name := ""
	if user := s.session.User(); user != nil {
		name = user.FullName()
	}
	s.render(c, http.StatusOK, "waiting.html", gin.H{"Name": name})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.session.Logout()
	s.invalidateExpenseData()
	s.invalidateUserData()
	c.Redirect(http.StatusFound, "/login")
}

// apiErrorMessage prefers the server's message and falls back to a generic
// Persian one for network-level failures.
func apiErrorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
