package webui

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "hamkharj_flash"

// Flash is a one-shot toast carried across a redirect in a cookie.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

func setFlash(c *gin.Context, kind, message string) {
	value := url.QueryEscape(kind + "|" + message)
	c.SetCookie(flashCookie, value, 60, "/", "", false, true)
}

// popFlash reads and clears the pending toast, if any.
func popFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(decoded, "|")
	if !ok || message == "" {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}
