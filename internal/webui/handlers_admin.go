package webui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hamkharj/internal/api"
)

type adminData struct {
	User    *api.User
	Pending []api.User
	Users   []api.User
	Flash   *Flash
}

func (s *Server) handleAdmin(c *gin.Context) {
	data := adminData{
		User:  s.session.User(),
		Flash: popFlash(c),
	}

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		pending, err := s.getPendingUsers(ctx)
		data.Pending = pending
		return err
	})
	g.Go(func() error {
		users, err := s.getUsers(ctx)
		data.Users = users
		return err
	})
	if err := g.Wait(); err != nil {
		s.mutationFailed(c, "Admin fetch failed", err, "/dashboard", "دریافت فهرست کاربران ناموفق بود")
		return
	}

	s.render(c, http.StatusOK, "admin.html", data)
}

func (s *Server) handleApproveUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if _, err := s.client.ApproveUser(c.Request.Context(), id); err != nil {
		s.mutationFailed(c, "User approval failed", err, "/admin", "تایید کاربر ناموفق بود")
		return
	}

	s.invalidateUserData()
	setFlash(c, "success", "کاربر تایید شد")
	c.Redirect(http.StatusFound, "/admin")
}

func (s *Server) handleSetUserActive(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	active := c.PostForm("active") == "true"

	if _, err := s.client.SetUserActive(c.Request.Context(), id, active); err != nil {
		s.mutationFailed(c, "User activation change failed", err, "/admin", "تغییر وضعیت کاربر ناموفق بود")
		return
	}

	s.invalidateUserData()
	if active {
		setFlash(c, "success", "کاربر فعال شد")
	} else {
		setFlash(c, "success", "کاربر غیرفعال شد")
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := s.client.DeleteUser(c.Request.Context(), id); err != nil {
		s.mutationFailed(c, "User deletion failed", err, "/admin", "حذف کاربر ناموفق بود")
		return
	}

	s.logger.Info("User removed via admin page", zap.Int64("user_id", id))
	s.invalidateUserData()
	s.invalidateExpenseData()
	setFlash(c, "success", "کاربر حذف شد")
	c.Redirect(http.StatusFound, "/admin")
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Redirect(http.StatusFound, "/admin")
		return 0, false
	}
	return id, true
}
