package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{
		"APP_NAME", "REDIS_ADDR", "WEB_ORIGIN", "RP_ID", "RP_ORIGINS",
		"SESSION_TTL_SECONDS", "ADMIN_EMAILS", "BOOTSTRAP_ADMIN_EMAIL",
		"STALE_CHECK_MINUTES", "METRICS_ENABLED",
	} {
		t.Setenv(k, "")
	}

	cfg := loadConfig()
	if cfg.AppName != "Club Material Hub" {
		t.Fatalf("AppName = %q", cfg.AppName)
	}
	if cfg.RedisAddr != "127.0.0.1:6379" {
		t.Fatalf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.StaleCheckInterval != 24*time.Hour {
		t.Fatalf("StaleCheckInterval = %v", cfg.StaleCheckInterval)
	}
	if !cfg.MetricsEnabled {
		t.Fatal("metrics should default to enabled")
	}
	// RP_ORIGINS 缺省回退 WEB_ORIGIN
	if len(cfg.RPOrigins) != 1 || cfg.RPOrigins[0] != cfg.WebOrigin {
		t.Fatalf("RPOrigins = %v", cfg.RPOrigins)
	}
	if len(cfg.AdminEmails) != 0 {
		t.Fatalf("AdminEmails = %v", cfg.AdminEmails)
	}
}

func TestLoadConfigParsing(t *testing.T) {
	t.Setenv("SESSION_TTL_SECONDS", "120")
	t.Setenv("STALE_CHECK_MINUTES", "30")
	t.Setenv("ADMIN_EMAILS", " Admin@Ex.com, ops@ex.com ,")
	t.Setenv("RP_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("METRICS_ENABLED", "0")

	cfg := loadConfig()
	if cfg.SessionTTL != 2*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.StaleCheckInterval != 30*time.Minute {
		t.Fatalf("StaleCheckInterval = %v", cfg.StaleCheckInterval)
	}
	// 管理员邮箱小写化 + 去空白 + 丢空项
	want := []string{"admin@ex.com", "ops@ex.com"}
	if len(cfg.AdminEmails) != len(want) {
		t.Fatalf("AdminEmails = %v", cfg.AdminEmails)
	}
	for i := range want {
		if cfg.AdminEmails[i] != want[i] {
			t.Fatalf("AdminEmails[%d] = %q, want %q", i, cfg.AdminEmails[i], want[i])
		}
	}
	if len(cfg.RPOrigins) != 2 {
		t.Fatalf("RPOrigins = %v", cfg.RPOrigins)
	}
	if cfg.MetricsEnabled {
		t.Fatal("METRICS_ENABLED=0 should disable metrics")
	}
}

func TestIsAdminEmail(t *testing.T) {
	cfg := Config{AdminEmails: []string{"admin@ex.com"}}
	if !isAdminEmail(cfg, "Admin@Ex.com") {
		t.Fatal("admin email match should be case-insensitive")
	}
	if isAdminEmail(cfg, "member@ex.com") {
		t.Fatal("non-admin email should not match")
	}
}
