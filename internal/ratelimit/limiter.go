package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/gatekeeper/pkg/kvs"
)

// ErrEmptyClientID はクライアント識別子が空であることを表す。
var ErrEmptyClientID = errors.New("ratelimit: empty client id")

// keyPrefix はバックエンドに保存するカウンタのキー接頭辞。
const keyPrefix = "rate_limit:"

// Limiter は固定ウィンドウ方式のレートリミッター。
// カウンタはバックエンドのアトミックなインクリメントで更新されるため、
// 同一クライアントの並行リクエストでカウントが失われることはない。
// カウンタの有効期限はウィンドウ長に設定され、放置されたカウンタは
// バックエンド側で自動的に消える。
type Limiter struct {
	// store はカウンタを保持するキーバリューバックエンド。
	store kvs.Store
	// window はウィンドウ長。
	window time.Duration
	// maxRequests はウィンドウ内で許可するリクエスト数の上限。
	maxRequests int64
}

// New は新しいレートリミッターを生成する。
func New(store kvs.Store, window time.Duration, maxRequests int64) *Limiter {
	return &Limiter{
		store:       store,
		window:      window,
		maxRequests: maxRequests,
	}
}

// Check はクライアントの新しいリクエストがウィンドウ内の上限以内か
// どうかを判定する。trueなら許可、falseなら拒否。
// カウンタが新規作成された時点でウィンドウ長の有効期限が設定され、
// 期限切れによるリセット後は再びカウント1から始まる。
func (l *Limiter) Check(ctx context.Context, clientID string) (bool, error) {
	if clientID == "" {
		return false, ErrEmptyClientID
	}

	count, err := l.store.IncrEx(ctx, keyPrefix+clientID, l.window)
	if err != nil {
		return false, fmt.Errorf("レートリミットカウンタの更新に失敗: %w", err)
	}
	return count <= l.maxRequests, nil
}
