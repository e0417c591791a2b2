package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost はパスワードハッシュのデフォルトbcryptコスト。
const DefaultCost = 10

// Hasher はbcryptによるパスワードハッシュの生成と照合を行う。
type Hasher struct {
	cost int
}

// NewHasher はHasherを生成する。costはbcryptの有効範囲に丸める。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost は実際に使用するbcryptコストを返す。
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash は平文パスワードからソルト付きハッシュを生成する。
// 72バイトを超えるパスワードはbcrypt.ErrPasswordTooLongとなる。
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare はハッシュと平文パスワードを定数時間で照合する。
// 不一致の場合は(false, nil)、ハッシュが壊れている場合はエラーを返す。
func (h *Hasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to compare password hash: %w", err)
}
