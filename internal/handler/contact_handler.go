package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/chefsite/internal/contact"
	"github.com/hitoshi/chefsite/internal/metrics"
	"github.com/hitoshi/chefsite/internal/model"
)

// ContactServiceInterface はお問い合わせハンドラーが必要とするサービスインターフェース。
type ContactServiceInterface interface {
	Submit(ctx context.Context, in contact.Input) (*model.ContactMessage, error)
}

// ContactHandler はお問い合わせフォームのHTTPハンドラー。
type ContactHandler struct {
	service ContactServiceInterface
	metrics metrics.MetricsCollector
}

// NewContactHandler はContactHandlerを生成する。
func NewContactHandler(service ContactServiceInterface, mc metrics.MetricsCollector) *ContactHandler {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &ContactHandler{service: service, metrics: mc}
}

// Submit はお問い合わせを保存し、お礼のHTML断片を返す。
// POST /submit-form
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	values, err := parseBody(w, r)
	if err != nil {
		slog.Warn("invalid contact request", slog.String("error", err.Error()))
		h.metrics.RecordContact(metrics.ResultError)
		writeHTML(w, http.StatusBadRequest, "Error saving data!")
		return
	}

	_, err = h.service.Submit(r.Context(), contact.Input{
		Name:    values.String("name"),
		Email:   values.String("email"),
		Message: values.String("message"),
	})
	if err != nil {
		slog.Error("failed to save contact message", slog.String("error", err.Error()))
		h.metrics.RecordContact(metrics.ResultError)
		writeHTML(w, http.StatusBadRequest, "Error saving data!")
		return
	}

	h.metrics.RecordContact(metrics.ResultOK)
	writeHTML(w, http.StatusOK, "<p>Thank you for contacting us!</p>")
}

func writeHTML(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := io.WriteString(w, body); err != nil {
		slog.Error("failed to write HTML response", slog.String("error", err.Error()))
	}
}
