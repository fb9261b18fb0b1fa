// controllers/user_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"Gin_postgres_redis_club_tool/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), q, page, size)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "users": res.Users})
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	user, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing id"})
		return
	}

	// 不允许删除自己，避免锁死
	if uid, _, _, ok := currentUser(c); ok && uid == id {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}

	// 管理员账号保护
	target, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, err)
		return
	}
	if target.IsAdmin {
		c.JSON(http.StatusForbidden, app.H{"error": "cannot delete an admin"})
		return
	}
	email := strings.ToLower(target.Username)
	for _, admin := range uc.Cfg.AdminEmails {
		if email == admin {
			c.JSON(http.StatusForbidden, app.H{"error": "cannot delete an admin"})
			return
		}
	}

	if err := uc.Repo.DeleteUserByID(c.Request.Context(), id); err != nil {
		uc.fail(c, err)
		return
	}
	// 删人必须同时撤掉他所有登录会话
	_ = uc.AppSess.RevokeAllForUser(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/users/:id/admin {"isAdmin": true}
func (uc *UserController) SetAdmin(c *gin.Context) {
	var in struct {
		IsAdmin *bool `json:"isAdmin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	id := c.Param("id")

	// 不能摘掉自己的管理员，防止把系统管没了
	if uid, _, _, ok := currentUser(c); ok && uid == id && !*in.IsAdmin {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot revoke your own admin role"})
		return
	}
	if _, err := uc.Repo.FindUserByID(c.Request.Context(), id); err != nil {
		uc.fail(c, err)
		return
	}
	if err := uc.Repo.SetUserAdmin(c.Request.Context(), id, *in.IsAdmin); err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
