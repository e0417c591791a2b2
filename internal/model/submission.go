package model

import "time"

// ContactMessage はお問い合わせフォームから送信されたメッセージ。
// アカウントとは紐付かない。
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// Order は注文を表す。
// SubmittedByは作成時点のセッションのメールアドレスで、以後再検証しない。
type Order struct {
	ID          string
	Name        string
	Price       *float64 // 未指定の場合はnil
	Description string
	SubmittedBy string
	CreatedAt   time.Time
}
