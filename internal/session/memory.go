package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/chefsite/internal/model"
)

// MemoryStore はプロセス内のmapでセッションを保持するストア。
// プロセス再起動で全セッションが失われ、複数インスタンス間では共有されない。
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]model.Session

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore はMemoryStoreを生成する。
// cleanupIntervalが正の場合、期限切れエントリを定期的に削除するgoroutineを開始する。
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]model.Session),
		stopCh:   make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go s.cleanupLoop(cleanupInterval)
	}

	return s
}

// Open はセッションを発行する。
func (s *MemoryStore) Open(_ context.Context, identityID, displayName string) (*model.Session, error) {
	sess, err := newSession(identityID, displayName, s.now(), s.ttl)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.Token] = *sess
	s.mu.Unlock()

	return sess, nil
}

// Lookup はトークンに対応するセッションのコピーを返す。
func (s *MemoryStore) Lookup(_ context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}

	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || sess.Expired(s.now()) {
		return nil, nil
	}
	return &sess, nil
}

// Close はセッションを破棄する。
func (s *MemoryStore) Close(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return model.ErrSessionNotFound
	}
	delete(s.sessions, token)
	return nil
}

// Sweep は期限切れセッションを削除し、削除件数を返す。
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Len は保持しているセッション数を返す（期限切れを含む）。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stop はクリーンアップのバックグラウンドgoroutineを停止する。
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// cleanupLoop は定期的に期限切れのセッションを削除する。
func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("expired sessions swept", slog.Int("count", n))
			}
		}
	}
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
