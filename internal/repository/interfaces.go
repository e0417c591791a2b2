// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/chefsite/internal/model"
)

// IdentityRepository はアカウント（資格情報）の永続化インターフェース。
type IdentityRepository interface {
	// Create はidentityを作成する。emailが既に存在する場合はmodel.ErrDuplicateEmailを返す。
	Create(ctx context.Context, identity *model.Identity) error

	// FindByEmail はemailでidentityを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByToken は指定トークンのセッションを取得する。期限切れの場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	// DeleteByToken は指定トークンのセッションを削除する。
	// 該当行がない場合はmodel.ErrSessionNotFoundを返す。
	DeleteByToken(ctx context.Context, token string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// ContactRepository はお問い合わせメッセージの永続化インターフェース。
type ContactRepository interface {
	// Create はメッセージを作成する。
	Create(ctx context.Context, msg *model.ContactMessage) error
}

// OrderRepository は注文の永続化インターフェース。
type OrderRepository interface {
	// Create は注文を作成する。
	Create(ctx context.Context, order *model.Order) error
}
