package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/chefsite/internal/model"
)

const redisKeyPrefix = "session:"

// redisRecord はRedisに保存するセッション属性。
type redisRecord struct {
	IdentityID  string    `json:"identity_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RedisStore はRedisをバックエンドとするストア。
// キーのTTLでセッションを失効させるため、複数インスタンスで共有できる。
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore はRedisStoreを生成する。
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Open はセッションを発行し、TTL付きで保存する。
func (s *RedisStore) Open(ctx context.Context, identityID, displayName string) (*model.Session, error) {
	sess, err := newSession(identityID, displayName, s.now(), s.ttl)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(redisRecord{
		IdentityID:  sess.IdentityID,
		DisplayName: sess.DisplayName,
		CreatedAt:   sess.CreatedAt,
		ExpiresAt:   sess.ExpiresAt,
	})
	if err != nil {
		return nil, storeError("encode session", err)
	}

	if err := s.client.Set(ctx, redisKey(sess.Token), data, s.ttl).Err(); err != nil {
		return nil, storeError("open session", err)
	}
	return sess, nil
}

// Lookup はトークンに対応するセッションを返す。
func (s *RedisStore) Lookup(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}

	value, err := s.client.Get(ctx, redisKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("lookup session", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, storeError("decode session", err)
	}

	sess := &model.Session{
		Token:       token,
		IdentityID:  rec.IdentityID,
		DisplayName: rec.DisplayName,
		CreatedAt:   rec.CreatedAt,
		ExpiresAt:   rec.ExpiresAt,
	}
	if sess.Expired(s.now()) {
		return nil, nil
	}
	return sess, nil
}

// Close はセッションを破棄する。
func (s *RedisStore) Close(ctx context.Context, token string) error {
	n, err := s.client.Del(ctx, redisKey(token)).Result()
	if err != nil {
		return storeError("close session", err)
	}
	if n == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func redisKey(token string) string {
	return redisKeyPrefix + token
}

// compile-time interface check
var _ Store = (*RedisStore)(nil)
