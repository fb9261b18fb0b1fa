package routes

import (
	"Gin_postgres_redis_club_tool/app"
	"Gin_postgres_redis_club_tool/controllers"
	"Gin_postgres_redis_club_tool/jobs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App, job *jobs.StaleJob) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	uc := controllers.GetUserController(s)
	inviteCtl := controllers.GetInviteController(s)
	materialCtl := controllers.NewMaterialController(s)
	loanCtl := controllers.NewLoanController(s)
	activityCtl := controllers.NewActivityController(s, job)
	settingsCtl := controllers.NewSettingsController(s)
	notifyCtl := controllers.NewNotificationController(s)
	exportCtl := controllers.NewExportController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo, a.Config)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)
	secureCookie := strings.HasPrefix(a.Config.WebOrigin, "https://")

	// ------------------------------
	// WebAuthn（公开+受保护）
	// ------------------------------
	wa := r.Group("/webauthn")
	{
		wa.POST("/register/begin", s.BeginRegistration)
		wa.POST("/register/finish", s.FinishRegistration)

		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)
	}

	waAuth := wa.Group("", authMW, seenMW)
	{
		waAuth.GET("/whoami", s.WhoAmI)

		// 登出：删 Redis，会话 Cookie 置空
		waAuth.POST("/logout", func(c *app.Ctx) {
			if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
				_ = s.AppSess.Delete(c.Request.Context(), ck.Value)
			}
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     app.AppSessionCookie,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   secureCookie,
			})
			c.JSON(http.StatusOK, app.H{"ok": true})
		})
	}

	// 已登录用户添加新凭据（绑定手机等）
	creds := r.Group("/api/credentials", authMW, seenMW)
	{
		creds.POST("/add/begin", s.BeginAddCredential)
		creds.POST("/add/finish", s.FinishAddCredential)
	}

	// ------------------------------
	// 邀请（仅管理员）
	// ------------------------------
	admin := r.Group("/admin", authMW, adminMW)
	{
		admin.POST("/invites", inviteCtl.CreateInvite)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", uc.ListUsers) // ?q=&page=&size=
		users.GET("/:id", uc.GetUser)
		users.DELETE("/:id", uc.DeleteUser)
		users.POST("/:id/admin", uc.SetAdmin)
	}

	// ------------------------------
	// 材料（批量件）
	// ------------------------------
	// 管理：录入/修改/状态/数量调整
	materialsAdmin := r.Group("/api/materials", authMW, adminMW)
	{
		materialsAdmin.POST("", materialCtl.CreateMaterial)
		materialsAdmin.PATCH("/:id", materialCtl.UpdateMaterial)
		materialsAdmin.POST("/:id/state", materialCtl.SetState)
		materialsAdmin.POST("/:id/adjust", materialCtl.AdjustQuantity)
	}

	// 用户：浏览/详情/可借量/借出
	materials := r.Group("/api/materials", authMW, seenMW)
	{
		materials.GET("", materialCtl.ListMaterials)
		materials.GET("/:id", materialCtl.GetMaterial)
		materials.GET("/:id/availability", loanCtl.Availability)
		materials.POST("/:id/borrow", loanCtl.Borrow)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	loans := r.Group("/api/loans", authMW, seenMW)
	{
		loans.POST("/:id/pending-return", loanCtl.PendingReturn)
		loans.DELETE("/:id/request", loanCtl.CancelRequest)
		loans.GET("/mine", loanCtl.ListMyOpenLoans)
	}
	loansAdmin := r.Group("/api/loans", authMW, adminMW)
	{
		loansAdmin.GET("", loanCtl.ListLoans) // ?status=open|closed&userId=&materialId=&activityId=
		loansAdmin.POST("/:id/approve", loanCtl.Approve)
		loansAdmin.POST("/:id/return", loanCtl.Return)
		loansAdmin.POST("/:id/loss", loanCtl.Loss)
	}

	// 数量调整审计（仅管理员）
	r.GET("/api/adjustments", authMW, adminMW, materialCtl.ListAdjustments)

	// ------------------------------
	// 活动
	// ------------------------------
	activities := r.Group("/api/activities", authMW, seenMW)
	{
		activities.GET("", activityCtl.ListActivities)
		activities.GET("/:id", activityCtl.GetActivity)
		activities.POST("", activityCtl.CreateActivity)
		activities.PATCH("/:id", activityCtl.UpdateActivity)
		activities.POST("/:id/pending-return", loanCtl.ActivityPendingReturn)
	}
	activitiesAdmin := r.Group("/api/activities", authMW, adminMW)
	{
		activitiesAdmin.POST("/:id/finalize", activityCtl.FinalizeStale)
	}

	// stale 检测（仅管理员）
	stale := r.Group("/api/admin/stale-activities", authMW, adminMW)
	{
		stale.GET("", activityCtl.DetectStale)
		stale.POST("/notify", activityCtl.NotifyStale)
	}

	// ------------------------------
	// 配置（仅管理员）
	// ------------------------------
	settings := r.Group("/api/settings", authMW, adminMW)
	{
		settings.GET("/:domain", settingsCtl.GetSettings)
		settings.PUT("/:domain", settingsCtl.SaveSettings)
		settings.POST("/:domain/autocorrect", settingsCtl.AutoCorrect)
	}

	// ------------------------------
	// 通知（本人）
	// ------------------------------
	notifications := r.Group("/api/notifications", authMW, seenMW)
	{
		notifications.GET("", notifyCtl.ListMine) // ?unread=1
		notifications.POST("/:id/read", notifyCtl.MarkRead)
	}

	// 盘点导出（仅管理员）
	r.GET("/api/admin/export", authMW, adminMW, exportCtl.ExportInventory)

	// Prometheus
	if a.Config.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
