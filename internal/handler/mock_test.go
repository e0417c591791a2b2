package handler

import (
	"context"
	"testing/fstest"

	"github.com/hitoshi/chefsite/internal/contact"
	"github.com/hitoshi/chefsite/internal/model"
	"github.com/hitoshi/chefsite/internal/order"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn func(ctx context.Context, email, password string) (*model.Identity, error)
	loginFn    func(ctx context.Context, email, password string) (*model.Session, error)
	logoutFn   func(ctx context.Context, token string) error
}

func (m *mockAuthService) Register(ctx context.Context, email, password string) (*model.Identity, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password)
	}
	return &model.Identity{ID: "identity-1", Email: email}, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, model.ErrInvalidCredentials
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

type mockSessionResolver struct {
	sessions map[string]*model.Session
}

func (m *mockSessionResolver) CurrentSession(_ context.Context, token string) (*model.Session, error) {
	if sess, ok := m.sessions[token]; ok {
		return sess, nil
	}
	return nil, model.ErrNotAuthenticated
}

type mockContactService struct {
	submitFn func(ctx context.Context, in contact.Input) (*model.ContactMessage, error)
}

func (m *mockContactService) Submit(ctx context.Context, in contact.Input) (*model.ContactMessage, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, in)
	}
	return &model.ContactMessage{ID: "contact-1"}, nil
}

type mockOrderService struct {
	placeFn func(ctx context.Context, sess *model.Session, in order.Input) (*model.Order, error)
}

func (m *mockOrderService) Place(ctx context.Context, sess *model.Session, in order.Input) (*model.Order, error) {
	if m.placeFn != nil {
		return m.placeFn(ctx, sess, in)
	}
	return &model.Order{ID: "order-1"}, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(_ context.Context) error {
	return m.err
}

// --- compile-time interface checks ---
var _ AuthServiceInterface = (*mockAuthService)(nil)
var _ ContactServiceInterface = (*mockContactService)(nil)
var _ OrderServiceInterface = (*mockOrderService)(nil)
var _ HealthChecker = (*mockHealthChecker)(nil)

// testPages はテスト用の静的ファイル。
func testPages() fstest.MapFS {
	return fstest.MapFS{
		"index.html":    {Data: []byte("<h1>home</h1>")},
		"login.html":    {Data: []byte("<form action=\"/login\"></form>")},
		"register.html": {Data: []byte("<form action=\"/register\"></form>")},
	}
}
