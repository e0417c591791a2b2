package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/chefsite/internal/metrics"
	"github.com/hitoshi/chefsite/internal/middleware"
	"github.com/hitoshi/chefsite/internal/model"
	"github.com/hitoshi/chefsite/internal/order"
)

// OrderServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type OrderServiceInterface interface {
	Place(ctx context.Context, sess *model.Session, in order.Input) (*model.Order, error)
}

// OrderHandler は注文のHTTPハンドラー。
type OrderHandler struct {
	service OrderServiceInterface
	metrics metrics.MetricsCollector
}

// NewOrderHandler はOrderHandlerを生成する。
func NewOrderHandler(service OrderServiceInterface, mc metrics.MetricsCollector) *OrderHandler {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &OrderHandler{service: service, metrics: mc}
}

// Place はログイン中のユーザー名義で注文を保存する。
// 未認証の場合はボディを読まずに401を返す。
// POST /order
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	values, err := parseBody(w, r)
	if err != nil {
		slog.Warn("invalid order request", slog.String("error", err.Error()))
		h.metrics.RecordOrder(metrics.ResultError)
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 数値に変換できない価格は保存失敗と同じ扱いにする
	price, err := values.Float("price")
	if err != nil {
		slog.Warn("order price is not a number", slog.String("error", err.Error()))
		h.metrics.RecordOrder(metrics.ResultError)
		writeMessage(w, http.StatusInternalServerError, "Failed to place order")
		return
	}

	_, err = h.service.Place(r.Context(), sess, order.Input{
		Name:        values.String("name"),
		Price:       price,
		Description: values.String("description"),
	})
	switch {
	case err == nil:
		h.metrics.RecordOrder(metrics.ResultOK)
		writeMessage(w, http.StatusCreated, "Order placed successfully!")
	case errors.Is(err, model.ErrNotAuthenticated):
		writeMessage(w, http.StatusUnauthorized, "Not authenticated")
	default:
		slog.Error("failed to place order", slog.String("error", err.Error()))
		h.metrics.RecordOrder(metrics.ResultError)
		writeMessage(w, http.StatusInternalServerError, "Failed to place order")
	}
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	middleware.WriteJSON(w, statusCode, map[string]string{"message": message})
}
