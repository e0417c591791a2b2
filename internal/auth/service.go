// Package auth はパスワード認証とセッションの発行・破棄を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/chefsite/internal/logger"
	"github.com/hitoshi/chefsite/internal/model"
	"github.com/hitoshi/chefsite/internal/repository"
	"github.com/hitoshi/chefsite/internal/session"
)

// dummyPassword は未登録メールアドレスでのログイン時に照合するダミーハッシュの元。
const dummyPassword = "chefsite-dummy-password"

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	identities repository.IdentityRepository
	sessions   session.Store
	hashes     *HashPool
	now        func() time.Time

	dummyHash string
}

// NewService はServiceを生成する。
// 未登録メールアドレスの照合に使うダミーハッシュはここでHashPool経由で生成しておく。
func NewService(
	identities repository.IdentityRepository,
	sessions session.Store,
	hashes *HashPool,
) *Service {
	s := &Service{
		identities: identities,
		sessions:   sessions,
		hashes:     hashes,
		now:        time.Now,
	}

	hash, err := hashes.Hash(context.Background(), dummyPassword)
	if err != nil {
		slog.Error("failed to prepare dummy hash", slog.String("error", err.Error()))
	}
	s.dummyHash = hash

	return s
}

// Register はパスワードをハッシュ化してidentityを登録する。セッションは発行しない。
// 同じメールアドレスが登録済みの場合はmodel.ErrDuplicateEmailを返す。
func (s *Service) Register(ctx context.Context, email, password string) (*model.Identity, error) {
	hash, err := s.hashes.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	identity := &model.Identity{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register identity: %w: %w", model.ErrPersistence, err)
	}

	slog.Info("identity registered", slog.String("identity_id", identity.ID))
	return identity, nil
}

// Login はメールアドレスとパスワードを検証し、新しいセッションを発行する。
// 未登録のメールアドレスと誤ったパスワードはどちらもmodel.ErrInvalidCredentialsとなる。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	identity, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w: %w", model.ErrPersistence, err)
	}

	if identity == nil {
		// 応答時間で登録有無を推測されないよう、未登録でも照合を1回行う
		_, _ = s.hashes.Compare(ctx, s.dummyHash, password)
		return nil, model.ErrInvalidCredentials
	}

	ok, err := s.hashes.Compare(ctx, identity.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrInvalidCredentials
	}

	sess, err := s.sessions.Open(ctx, identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	slog.Info("identity logged in",
		slog.String("identity_id", identity.ID),
		slog.String("session", logger.TokenPrefix(sess.Token)),
	)
	return sess, nil
}

// Logout はセッションを破棄する。
// 存在しないトークンの場合はmodel.ErrSessionNotFoundを返す。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return model.ErrSessionNotFound
	}

	if err := s.sessions.Close(ctx, token); err != nil {
		return err
	}

	slog.Info("session closed", slog.String("session", logger.TokenPrefix(token)))
	return nil
}

// CurrentSession はトークンに対応する有効なセッションを返す。
// トークンが空・未発行・破棄済み・期限切れの場合はmodel.ErrNotAuthenticatedを返す。
func (s *Service) CurrentSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, model.ErrNotAuthenticated
	}

	sess, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, model.ErrNotAuthenticated
	}
	return sess, nil
}
