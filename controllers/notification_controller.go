// controllers/notification_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_club_tool/app"

	"github.com/gin-gonic/gin"
)

type NotificationController struct{ *Srv }

func NewNotificationController(s *Srv) *NotificationController {
	return &NotificationController{Srv: s}
}

// 自己的通知 GET /api/notifications?unread=1&page=&size=
func (nc *NotificationController) ListMine(c *gin.Context) {
	uid, _, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	unread := c.Query("unread") == "1"

	ns, err := nc.Repo.ListNotifications(c.Request.Context(), uid, unread, page, size)
	if err != nil {
		nc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ns})
}

// POST /api/notifications/:id/read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	uid, _, _, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid notification id"})
		return
	}
	if err := nc.Repo.MarkNotificationRead(c.Request.Context(), uint(id), uid); err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "notification not found or already read"})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
