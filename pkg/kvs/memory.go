package kvs

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory はインメモリのStore実装。
// 単体テストおよびRedisなしでのローカル起動に使用する。
// 有効期限切れのエントリはアクセス時に遅延削除される。
type Memory struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	hashes map[string]map[string]string
	now    func() time.Time
}

// memoryEntry は値と有効期限の組。
type memoryEntry struct {
	value    string
	expireAt time.Time // ゼロ値は無期限
}

// MemoryOption はMemoryの生成オプション。
type MemoryOption func(*Memory)

// WithClock は現在時刻の取得関数を差し替える。
// 有効期限のテストで時刻を進めるために使用する。
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory は新しいインメモリStoreを生成する。
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		values: make(map[string]memoryEntry),
		hashes: make(map[string]map[string]string),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get はキーに対応する値を取得する。
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.values[key]
	if !ok || m.expired(e) {
		delete(m.values, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

// Set は値を書き込み、有効期限を設定する。
func (m *Memory) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = memoryEntry{value: value, expireAt: m.expireAtFrom(ttl)}
	return nil
}

// IncrEx はカウンタをインクリメントする。ミューテックスで保護されるため、
// 読み取りと書き込みの間に他のリクエストが割り込むことはない。
func (m *Memory) IncrEx(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.values[key]
	if !ok || m.expired(e) {
		m.values[key] = memoryEntry{value: "1", expireAt: m.expireAtFrom(ttl)}
		return 1, nil
	}

	count, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, err
	}
	count++
	e.value = strconv.FormatInt(count, 10)
	m.values[key] = e
	return count, nil
}

// HSet はハッシュのフィールド群を書き込む。
func (m *Memory) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

// HGetAll はハッシュの全フィールドを取得する。
func (m *Memory) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hashes[key]
	if !ok {
		return map[string]string{}, nil
	}
	copied := make(map[string]string, len(h))
	for k, v := range h {
		copied[k] = v
	}
	return copied, nil
}

// Ping は常に成功する。
func (m *Memory) Ping(_ context.Context) error {
	return nil
}

// expired はエントリが有効期限切れかどうかを判定する。
func (m *Memory) expired(e memoryEntry) bool {
	return !e.expireAt.IsZero() && !m.now().Before(e.expireAt)
}

// expireAtFrom はttlから有効期限時刻を計算する。ttlが0以下の場合は無期限。
func (m *Memory) expireAtFrom(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}
