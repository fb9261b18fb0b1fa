package app

import (
	"Gin_postgres_redis_club_tool/db"
	"Gin_postgres_redis_club_tool/session"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "club_session"

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认用户仍存在，并把 isAdmin 放进 Context（只查一次）
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set("userID", as.UserID)
		c.Set("username", u.Username)
		c.Set("isAdmin", u.IsAdmin || isAdminEmail(cfg, u.Username))

		c.Next()
	}
}

// 管理员 = 数据库标记，或配置里的管理员邮箱
func isAdminEmail(cfg Config, username string) bool {
	email := strings.ToLower(username)
	for _, admin := range cfg.AdminEmails {
		if email == admin {
			return true
		}
	}
	return false
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		// AuthRequired 已经查过库并设置 isAdmin
		if v, ok := c.Get("isAdmin"); ok {
			if isAdmin, _ := v.(bool); isAdmin {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
	}
}
