// Package order は認証済みユーザーからの注文受付を提供する。
package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/chefsite/internal/model"
	"github.com/hitoshi/chefsite/internal/repository"
)

// Input は注文の入力値。Priceは未指定の場合nil。
type Input struct {
	Name        string
	Price       *float64
	Description string
}

// Service は注文の保存を行う。
type Service struct {
	repo repository.OrderRepository
	now  func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.OrderRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Place はセッションの主体名義で注文を1件保存する。
// セッションがnilの場合は何も保存せずmodel.ErrNotAuthenticatedを返す。
func (s *Service) Place(ctx context.Context, sess *model.Session, in Input) (*model.Order, error) {
	if sess == nil {
		return nil, model.ErrNotAuthenticated
	}

	o := &model.Order{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		SubmittedBy: sess.DisplayName,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("注文の保存に失敗しました: %w: %w", model.ErrPersistence, err)
	}

	slog.Info("order placed",
		slog.String("order_id", o.ID),
		slog.String("identity_id", sess.IdentityID),
	)
	return o, nil
}
