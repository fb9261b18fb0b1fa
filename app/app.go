package app

import (
	"Gin_postgres_redis_club_tool/db"
	"Gin_postgres_redis_club_tool/session"
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	WA     *webauthn.WebAuthn
	Log    *slog.Logger
	Config Config

	appSess *session.AppSessionStore
}

// Config 从环境变量读取
type Config struct {
	AppName        string
	RedisAddr      string
	RedisPwd       string
	WebOrigin      string
	RPID           string
	RPOrigins      []string
	SessionTTL     time.Duration
	AdminEmails    []string
	BootstrapEmail string

	StaleCheckInterval time.Duration // stale 活动检测周期
	MetricsEnabled     bool
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func MustNew() *App {
	cfg := loadConfig()
	logger := newLogger()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- WebAuthn RP ---
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.AppName + " Passkeys",
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		log.Fatalf("webauthn: %v", err)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	a := &App{
		Router: r, DB: dbConn, RDB: rdb, WA: wa, Log: logger, Config: cfg,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
	return a
}

func (a *App) Close() { _ = a.RDB.Close() }

// slog JSON，APP_ENV=dev 时打 debug
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("APP_ENV") == "dev" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	ttl := 24 * time.Hour
	if sec, err := strconv.Atoi(get("SESSION_TTL_SECONDS", "")); err == nil && sec > 0 {
		ttl = time.Duration(sec) * time.Second
	}

	staleEvery := 24 * time.Hour
	if min, err := strconv.Atoi(get("STALE_CHECK_MINUTES", "")); err == nil && min > 0 {
		staleEvery = time.Duration(min) * time.Minute
	}

	splitCSV := func(csv string) []string {
		var out []string
		for _, s := range strings.Split(csv, ",") {
			if t := strings.TrimSpace(s); t != "" {
				out = append(out, t)
			}
		}
		return out
	}

	origin := get("WEB_ORIGIN", "http://localhost:5173")
	origins := splitCSV(get("RP_ORIGINS", origin))

	var admins []string
	for _, s := range splitCSV(os.Getenv("ADMIN_EMAILS")) { // 例如: "admin@ex.com,ops@ex.com"
		admins = append(admins, strings.ToLower(s))
	}

	return Config{
		AppName:        get("APP_NAME", "Club Material Hub"),
		RedisAddr:      get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		WebOrigin:      origin,
		RPID:           get("RP_ID", "localhost"),
		RPOrigins:      origins,
		SessionTTL:     ttl,
		AdminEmails:    admins,
		BootstrapEmail: strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),

		StaleCheckInterval: staleEvery,
		MetricsEnabled:     get("METRICS_ENABLED", "1") != "0",
	}
}

// 帮助函数：新用户 ID（UUID 字符串 → []byte 作为 userHandle）
func NewUserID() []byte { id := uuid.New(); return id[:] }
