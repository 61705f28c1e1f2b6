package kvs

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound はキーが存在しないことを表す。
// バックエンド障害とは区別され、キャッシュミス等の正常系として扱う。
var ErrNotFound = errors.New("kvs: key not found")

// Store はキーバリューバックエンドの操作を定義する。
// すべての操作はブロッキングする可能性があるためcontextを受け取る。
type Store interface {
	// Get はキーに対応する値を取得する。キーが存在しない場合はErrNotFoundを返す。
	Get(ctx context.Context, key string) (string, error)
	// Set は値を書き込み、有効期限を設定する。ttlが0の場合は無期限。
	// 既存の値は無条件に上書きされる。
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// IncrEx はカウンタをアトミックにインクリメントし、インクリメント後の値を返す。
	// キーが新規作成された場合（戻り値が1の場合）はttlを設定する。
	// インクリメントと有効期限設定は単一のアトミック操作として実行される。
	IncrEx(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// HSet はハッシュのフィールド群を書き込む。
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HGetAll はハッシュの全フィールドを取得する。
	// キーが存在しない場合は空のマップを返す（エラーにはしない）。
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// Ping はバックエンドへの疎通を確認する。
	Ping(ctx context.Context) error
}
