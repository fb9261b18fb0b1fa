package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

// Store WebAuthn 握手中间态（几分钟就过期，跟业务会话分开存）
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store { return &Store{rdb: rdb, ttl: ttl} }

func waKey(kind, id string) string { return fmt.Sprintf("club:webauthn:%s:%s", kind, id) }

func (s *Store) save(ctx context.Context, k string, sd *webauthn.SessionData) error {
	b, _ := json.Marshal(sd)
	return s.rdb.Set(ctx, k, b, s.ttl).Err()
}

func (s *Store) load(ctx context.Context, k string) (*webauthn.SessionData, error) {
	b, err := s.rdb.Get(ctx, k).Bytes()
	if err != nil {
		return nil, err
	}
	var sd webauthn.SessionData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

// 注册流程：已登录用户加新凭据，按用户名存

func (s *Store) SaveReg(ctx context.Context, username string, sd *webauthn.SessionData) error {
	return s.save(ctx, waKey("reg", username), sd)
}

func (s *Store) LoadReg(ctx context.Context, username string) (*webauthn.SessionData, error) {
	return s.load(ctx, waKey("reg", username))
}

func (s *Store) DelReg(ctx context.Context, username string) {
	_ = s.rdb.Del(ctx, waKey("reg", username)).Err()
}

// 邀请注册流程：按一次性 token 存

func (s *Store) SaveRegByToken(ctx context.Context, token string, sd *webauthn.SessionData) error {
	return s.save(ctx, waKey("reg:inv", token), sd)
}

func (s *Store) LoadRegByToken(ctx context.Context, token string) (*webauthn.SessionData, error) {
	return s.load(ctx, waKey("reg:inv", token))
}

func (s *Store) DelRegByToken(ctx context.Context, token string) {
	_ = s.rdb.Del(ctx, waKey("reg:inv", token)).Err()
}

// 登录流程：按随机 sessionId 存

func (s *Store) SaveAuth(ctx context.Context, sid string, sd *webauthn.SessionData) error {
	return s.save(ctx, waKey("auth", sid), sd)
}

func (s *Store) LoadAuth(ctx context.Context, sid string) (*webauthn.SessionData, error) {
	return s.load(ctx, waKey("auth", sid))
}

func (s *Store) DelAuth(ctx context.Context, sid string) {
	_ = s.rdb.Del(ctx, waKey("auth", sid)).Err()
}
