package main

import (
	"Gin_postgres_redis_club_tool/app"
	"Gin_postgres_redis_club_tool/config"
	"Gin_postgres_redis_club_tool/controllers"
	"Gin_postgres_redis_club_tool/jobs"
	"Gin_postgres_redis_club_tool/routes"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	srv := controllers.GetSrv(application)
	job := &jobs.StaleJob{Source: srv.Repo, Sink: srv.Repo, Log: application.Log}

	routes.RegisterRoutes(r, application, job)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 空库启动时给 BOOTSTRAP_ADMIN_EMAIL 发首个管理员邀请
	app.BootstrapFirstAdmin(ctx, application.Config, srv.Repo)

	// 过期活动检测后台任务
	go job.Start(ctx, application.Config.StaleCheckInterval)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
