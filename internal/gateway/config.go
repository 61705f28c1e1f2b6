package gateway

import (
	"os"
	"strconv"
	"time"
)

// Config はゲートウェイの環境変数由来の設定。
// プロセス起動時に一度だけ読み込まれる。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// JWTSecret はトークン署名用の秘密鍵。
	JWTSecret string
	// TokenTTL は発行するトークンの有効期間。
	TokenTTL time.Duration
	// RateLimitWindow はレート制限の固定ウィンドウ長。
	RateLimitWindow time.Duration
	// RateLimitMax はウィンドウ内で許可するリクエスト数の上限。
	RateLimitMax int64
	// CacheTTL はレスポンスキャッシュの有効期間。
	CacheTTL time.Duration
	// RedisAddr はキーバリューバックエンドの接続アドレス。
	RedisAddr string
	// DBPath は認証情報ストアのSQLiteファイルパス。
	DBPath string
	// ProductLimit は商品一覧で読み取るID範囲の上限。
	ProductLimit int
	// SeedProducts は起動時シードで生成する商品数。
	SeedProducts int
	// RouteTimeout は下流ディスパッチの1リクエストあたりのタイムアウト。
	RouteTimeout time.Duration
	// FrontendURL はCORSで許可するフロントエンドのオリジン。
	FrontendURL string
}

// LoadConfig は環境変数から設定を読み込む。未設定の項目には既定値を使う。
func LoadConfig() Config {
	return Config{
		Port:            getEnvOr("PORT", "8080"),
		JWTSecret:       getEnvOr("JWT_SECRET", "dev-secret-key"),
		TokenTTL:        getEnvDurationOr("TOKEN_TTL", 30*time.Minute),
		RateLimitWindow: getEnvDurationOr("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:    int64(getEnvIntOr("RATE_LIMIT_MAX", 3)),
		CacheTTL:        getEnvDurationOr("CACHE_TTL", 5*time.Minute),
		RedisAddr:       getEnvOr("REDIS_ADDR", "localhost:6379"),
		DBPath:          getEnvOr("DB_PATH", "/data/gateway.db?_journal_mode=WAL&_busy_timeout=5000"),
		ProductLimit:    getEnvIntOr("PRODUCT_LIMIT", 10),
		SeedProducts:    getEnvIntOr("SEED_PRODUCTS", 1000),
		RouteTimeout:    getEnvDurationOr("ROUTE_TIMEOUT", time.Second),
		FrontendURL:     getEnvOr("FRONTEND_URL", "http://localhost:3000"),
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getEnvIntOr は整数の環境変数を取得する。未設定またはパース不能な場合は
// デフォルト値を返す。
func getEnvIntOr(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDurationOr は期間の環境変数（例: "30m", "60s"）を取得する。
// 未設定またはパース不能な場合はデフォルト値を返す。
func getEnvDurationOr(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
