// Package contact はお問い合わせフォームの受付を提供する。
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/chefsite/internal/model"
	"github.com/hitoshi/chefsite/internal/repository"
)

// Input はお問い合わせフォームの入力値。内容の検証は行わない。
type Input struct {
	Name    string
	Email   string
	Message string
}

// Service はお問い合わせメッセージの保存を行う。
type Service struct {
	repo repository.ContactRepository
	now  func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.ContactRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Submit はメッセージを1件保存する。空のフィールドもそのまま受け付ける。
func (s *Service) Submit(ctx context.Context, in Input) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("お問い合わせの保存に失敗しました: %w: %w", model.ErrPersistence, err)
	}

	slog.Info("contact message stored", slog.String("contact_id", msg.ID))
	return msg, nil
}
