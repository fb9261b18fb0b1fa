// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"Gin_postgres_redis_club_tool/app"
	"Gin_postgres_redis_club_tool/db"
	"Gin_postgres_redis_club_tool/models"
	"Gin_postgres_redis_club_tool/session"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Srv struct {
	WA        *webauthn.WebAuthn
	Repo      *db.Repo
	Sess      *session.Store
	AppSess   *session.AppSessionStore
	WebOrigin string
	Cfg       app.Config
	Log       *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		WA:        a.WA,
		Repo:      db.NewRepo(a.DB),
		Sess:      session.NewStore(a.RDB, 10*time.Minute),
		AppSess:   a.AppSessions(),
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
		Log:       a.Log,
	}
}

// --- helpers ---

// fail 统一错误映射：业务规则错误给具体信息；找不到给 404；
// 其余当基础设施抖动 → 记详细日志，对外只说“稍后再试”，不自动重试
func (s *Srv) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrInsufficientStock):
		c.JSON(http.StatusConflict, app.H{"error": "insufficient stock"})
	case errors.Is(err, db.ErrInvalidTransition):
		c.JSON(http.StatusConflict, app.H{"error": "loan is not in a state that allows this action"})
	case errors.Is(err, db.ErrMaterialNotLoanable):
		c.JSON(http.StatusConflict, app.H{"error": "material is retired, lost or under maintenance"})
	case errors.Is(err, db.ErrTooManyOpenLoans):
		c.JSON(http.StatusConflict, app.H{"error": "open loan limit reached, return something first"})
	case errors.Is(err, db.ErrAdjustBelowLoaned):
		c.JSON(http.StatusConflict, app.H{"error": "total would drop below currently loaned quantity"})
	case errors.Is(err, db.ErrActivityNotStale):
		c.JSON(http.StatusConflict, app.H{"error": "activity is not stale"})
	case errors.Is(err, db.ErrBadMaterialState), errors.Is(err, db.ErrBadActivityState):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	default:
		s.Log.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "temporary failure, please try again"})
	}
}

// currentUser 从 AuthRequired 注入的 Context 里取登录身份
func currentUser(c *gin.Context) (id, username string, isAdmin bool, ok bool) {
	v, ok := c.Get("userID")
	if !ok {
		return "", "", false, false
	}
	id, _ = v.(string)
	if n, o := c.Get("username"); o {
		username, _ = n.(string)
	}
	if a, o := c.Get("isAdmin"); o {
		isAdmin, _ = a.(bool)
	}
	return id, username, isAdmin, id != ""
}

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 触发登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID string, ip, ua string) error {
	_ = s.Repo.TouchUserLogin(ctx, userID, ip, ua) // 不阻塞登录
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.Cfg.SessionTTL)
	return nil
}

// WebAuthn: DB user -> waUser
type waUser struct {
	user  models.User
	creds []webauthn.Credential
}

func (u *waUser) WebAuthnID() []byte                         { id, _ := uuid.Parse(u.user.ID); return id[:] }
func (u *waUser) WebAuthnName() string                       { return u.user.Username }
func (u *waUser) WebAuthnDisplayName() string                { return u.user.DisplayName }
func (u *waUser) WebAuthnIcon() string                       { return "" }
func (u *waUser) WebAuthnCredentials() []webauthn.Credential { return u.creds }

func toWaCred(c models.Credential) webauthn.Credential {
	return webauthn.Credential{
		ID:              c.CredentialID,
		PublicKey:       c.PublicKey,
		AttestationType: c.AttestationType,
		Authenticator: webauthn.Authenticator{
			AAGUID:       c.AAGUID,
			SignCount:    c.SignCount,
			CloneWarning: c.CloneWarning,
		},
		Flags: webauthn.CredentialFlags{
			BackupEligible: c.BackupEligible,
			BackupState:    c.BackupState,
		},
	}
}

func (s *Srv) toWAUser(ctx context.Context, u *models.User) *waUser {
	cs, _ := s.Repo.LoadUserCredentials(ctx, u.ID)
	ws := make([]webauthn.Credential, 0, len(cs))
	for _, c := range cs {
		ws = append(ws, toWaCred(c))
	}
	return &waUser{user: *u, creds: ws}
}

func (s *Srv) loadWAUserByID(ctx context.Context, id string) (*waUser, error) {
	u, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toWAUser(ctx, u), nil
}

func (s *Srv) loadWAUserByUsername(ctx context.Context, username string) (*waUser, error) {
	u, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.toWAUser(ctx, u), nil
}
