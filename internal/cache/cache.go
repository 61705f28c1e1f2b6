package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/gatekeeper/pkg/kvs"
)

// Cache はレスポンスキャッシュ。論理リソースパスをキーとして
// シリアライズ済みペイロードをTTL付きで保持する。
type Cache struct {
	// store はエントリを保持するキーバリューバックエンド。
	store kvs.Store
}

// New は新しいレスポンスキャッシュを生成する。
func New(store kvs.Store) *Cache {
	return &Cache{store: store}
}

// Put はエントリを書き込む。既存のエントリは無条件に上書きされ、
// 有効期限はttlに再設定される（last-writer-wins）。
func (c *Cache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.store.Set(ctx, key, string(value), ttl); err != nil {
		return fmt.Errorf("キャッシュの書き込みに失敗: %w", err)
	}
	return nil
}

// Get はエントリを取得する。キャッシュミスは(nil, false, nil)で表され、
// エラーではない。バックエンド障害はエラーとして返し、ミスとして
// 握りつぶさない。運用上「データがない」と「バックエンドが落ちている」を
// 区別する必要があるため。
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := c.store.Get(ctx, key)
	if errors.Is(err, kvs.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("キャッシュの読み取りに失敗: %w", err)
	}
	return []byte(v), true, nil
}
