package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/chefsite/internal/model"
)

// PostgresOrderRepo はPostgreSQLを使用した注文リポジトリ。
type PostgresOrderRepo struct {
	db *sql.DB
}

// NewPostgresOrderRepo はPostgresOrderRepoを生成する。
func NewPostgresOrderRepo(db *sql.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

// Create は注文を作成する。Priceがnilの場合はNULLを格納する。
func (r *PostgresOrderRepo) Create(ctx context.Context, order *model.Order) error {
	var price sql.NullFloat64
	if order.Price != nil {
		price = sql.NullFloat64{Float64: *order.Price, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (id, name, price, description, submitted_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.Name, price, order.Description, order.SubmittedBy, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// compile-time interface check
var _ OrderRepository = (*PostgresOrderRepo)(nil)
