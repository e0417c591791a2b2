// Package model はドメインモデルを定義する。
package model

import "errors"

// 定義済みエラー。
// 下位層は fmt.Errorf("...: %w", err) でラップし、ハンドラーは errors.Is で判定する。
var (
	// ErrDuplicateEmail は登録済みのメールアドレスで再登録しようとした場合のエラー。
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しない場合のエラー。
	// どちらが誤っていたかは区別しない。
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated は有効なセッションを持たないリクエストが認証必須の操作を行った場合のエラー。
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPersistence はデータベースへの書き込みに失敗した場合のエラー。
	ErrPersistence = errors.New("persistence failure")

	// ErrSessionStore はセッションストアの操作に失敗した場合のエラー。
	ErrSessionStore = errors.New("session store failure")

	// ErrSessionNotFound は指定トークンのセッションが存在しない場合のエラー。
	ErrSessionNotFound = errors.New("session not found")
)
