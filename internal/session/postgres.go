package session

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/chefsite/internal/model"
	"github.com/hitoshi/chefsite/internal/repository"
)

// RepositoryStore はrepository.SessionRepository（PostgreSQL）をバックエンドとするストア。
// 期限切れ行の削除はcleanupジョブが担う。
type RepositoryStore struct {
	repo repository.SessionRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewRepositoryStore はRepositoryStoreを生成する。
func NewRepositoryStore(repo repository.SessionRepository, ttl time.Duration) *RepositoryStore {
	return &RepositoryStore{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Open はセッションを発行して永続化する。
func (s *RepositoryStore) Open(ctx context.Context, identityID, displayName string) (*model.Session, error) {
	sess, err := newSession(identityID, displayName, s.now(), s.ttl)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, storeError("open session", err)
	}
	return sess, nil
}

// Lookup はトークンに対応するセッションを返す。
func (s *RepositoryStore) Lookup(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}

	sess, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, storeError("lookup session", err)
	}
	return sess, nil
}

// Close はセッションを破棄する。
func (s *RepositoryStore) Close(ctx context.Context, token string) error {
	err := s.repo.DeleteByToken(ctx, token)
	if err == nil || errors.Is(err, model.ErrSessionNotFound) {
		return err
	}
	return storeError("close session", err)
}

// compile-time interface check
var _ Store = (*RepositoryStore)(nil)
