package model

import "time"

// Identity は登録済みアカウントを表す。
// Emailは大文字小文字を区別して一意。作成後に更新・削除はしない。
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session はログインセッションを表す。
// TokenはCookieで運ばれるベアラートークンであり、保持していること自体が認証となる。
type Session struct {
	Token       string
	IdentityID  string
	DisplayName string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired は指定時刻の時点でセッションが期限切れかどうかを返す。
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
