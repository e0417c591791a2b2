// Package session はセッショントークンとセッション属性の対応を管理するストアを提供する。
// バックエンドはプロセス内メモリ、PostgreSQL、Redisから選択する。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hitoshi/chefsite/internal/model"
)

// tokenBytes はセッショントークンのエントロピー（バイト数）。
const tokenBytes = 32

// Store はセッションストアのインターフェース。
// 全メソッドは複数リクエストから同時に呼ばれても安全でなければならない。
type Store interface {
	// Open は新しいトークンを発行し、identityとの対応を保存する。
	Open(ctx context.Context, identityID, displayName string) (*model.Session, error)
	// Lookup はトークンに対応するセッションを返す。未発行・破棄済み・期限切れの場合はnilを返す。
	Lookup(ctx context.Context, token string) (*model.Session, error)
	// Close はセッションを破棄する。存在しない場合はmodel.ErrSessionNotFoundを返す。
	Close(ctx context.Context, token string) error
}

// NewToken は暗号的に安全なセッショントークンを生成する。
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// newSession はトークンを発行し、有効期限付きのセッションを組み立てる。
func newSession(identityID, displayName string, now time.Time, ttl time.Duration) (*model.Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, storeError("generate token", err)
	}
	return &model.Session{
		Token:       token,
		IdentityID:  identityID,
		DisplayName: displayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}, nil
}

// storeError はバックエンドの失敗をmodel.ErrSessionStoreとしてラップする。
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrSessionStore, err)
}
