package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// HashPool はbcrypt処理の同時実行数を重み付きセマフォで制限する。
type HashPool struct {
	hasher *Hasher
	sem    *semaphore.Weighted
	size   int64

	observe func(time.Duration)
}

// NewHashPool はHashPoolを生成する。sizeが1未満の場合は1とする。
func NewHashPool(hasher *Hasher, size int) *HashPool {
	if size < 1 {
		size = 1
	}
	return &HashPool{
		hasher: hasher,
		sem:    semaphore.NewWeighted(int64(size)),
		size:   int64(size),
	}
}

// ObserveLatency はbcrypt処理ごとの所要時間を受け取る関数を設定する。
// スロット待ちの時間は含まない。
func (p *HashPool) ObserveLatency(fn func(time.Duration)) {
	p.observe = fn
}

// Size は同時実行数の上限を返す。
func (p *HashPool) Size() int {
	return int(p.size)
}

// Hash はスロットを確保してからパスワードをハッシュ化する。
// スロット待ちの間にctxがキャンセルされた場合はctxのエラーを返す。
func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	if err := p.acquire(ctx); err != nil {
		return "", err
	}
	defer p.sem.Release(1)
	defer p.track(time.Now())

	return p.hasher.Hash(password)
}

// Compare はスロットを確保してからハッシュを照合する。
func (p *HashPool) Compare(ctx context.Context, hash, password string) (bool, error) {
	if err := p.acquire(ctx); err != nil {
		return false, err
	}
	defer p.sem.Release(1)
	defer p.track(time.Now())

	return p.hasher.Compare(hash, password)
}

func (p *HashPool) acquire(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire hashing slot: %w", err)
	}
	return nil
}

func (p *HashPool) track(start time.Time) {
	if p.observe != nil {
		p.observe(time.Since(start))
	}
}
