package kvs

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed incr_ex.lua
var incrExScript string

// Redis はgo-redisクライアントをラップしたStore実装。
type Redis struct {
	// client はRedisへの接続クライアント。全リクエストで共有される。
	client *redis.Client
	// incrEx はINCRとEXPIREをアトミックに実行するLuaスクリプト。
	incrEx *redis.Script
}

// NewRedis は指定アドレスのRedisに接続するStoreを生成する。
// 接続確認のためPingを実行し、失敗した場合はエラーを返す。
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("Redisへの接続に失敗: %w", err)
	}

	return &Redis{
		client: client,
		incrEx: redis.NewScript(incrExScript),
	}, nil
}

// Get はキーに対応する値を取得する。
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("GETに失敗: %w", err)
	}
	return v, nil
}

// Set は値を書き込み、有効期限を設定する。
func (r *Redis) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("SETに失敗: %w", err)
	}
	return nil
}

// IncrEx はカウンタをアトミックにインクリメントする。
// 新規作成時（カウント1）のみttlを設定する。Luaスクリプトで実行するため、
// 同一キーへの並行リクエストでもカウントの更新は失われない。
func (r *Redis) IncrEx(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := r.incrEx.Run(ctx, r.client, []string{key}, int64(ttl.Seconds())).Int64()
	if err != nil {
		return 0, fmt.Errorf("カウンタのインクリメントに失敗: %w", err)
	}
	return count, nil
}

// HSet はハッシュのフィールド群を書き込む。
func (r *Redis) HSet(ctx context.Context, key string, fields map[string]string) error {
	args := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		args[k] = v
	}
	if err := r.client.HSet(ctx, key, args).Err(); err != nil {
		return fmt.Errorf("HSETに失敗: %w", err)
	}
	return nil
}

// HGetAll はハッシュの全フィールドを取得する。
func (r *Redis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("HGETALLに失敗: %w", err)
	}
	return fields, nil
}

// Ping はRedisへの疎通を確認する。
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redisへの疎通確認に失敗: %w", err)
	}
	return nil
}

// Close はRedisへの接続を閉じる。
func (r *Redis) Close() error {
	return r.client.Close()
}
