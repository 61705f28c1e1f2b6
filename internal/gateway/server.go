package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/nao1215/gatekeeper/internal/auth"
	"github.com/nao1215/gatekeeper/internal/cache"
	"github.com/nao1215/gatekeeper/internal/catalog"
	"github.com/nao1215/gatekeeper/internal/ratelimit"
	"github.com/nao1215/gatekeeper/pkg/kvs"
	"github.com/nao1215/gatekeeper/pkg/middleware"
	"github.com/nao1215/gatekeeper/pkg/token"
)

// cachedProductsKey は商品一覧のレスポンスキャッシュのキー。
const cachedProductsKey = "cached_products"

// defaultCredentials は起動時に認証情報ストアへ投入する固定のシードリスト。
// デモ用であり、実運用のユーザー管理基盤は持たない。
var defaultCredentials = []auth.Credential{
	{
		Username:    "gyanranjan@example.com",
		DisplayName: "Gyan Ranjan Ojha",
		Secret:      "Gyan@123",
		Active:      true,
	},
}

// Server はAPIゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はゲートウェイの設定。
	cfg Config
	// store はキーバリューバックエンド。全リクエストで共有される。
	store kvs.Store
	// auth は認証サービス。
	auth *auth.Service
	// tokens はトークンサービス。
	tokens *token.Service
	// limiter はレートリミッター。
	limiter *ratelimit.Limiter
	// cache はレスポンスキャッシュ。
	cache *cache.Cache
	// catalog は下流の商品カタログサービス。
	catalog *catalog.Service
	// db は認証情報ストアのSQLiteデータベース接続。
	db *sql.DB
}

// NewServer は新しいゲートウェイサーバーを生成する。
// 認証情報ストアの初期化とシード投入、バックエンドへの接続、
// 商品データの初回シードを行う。
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	credStore, err := auth.NewStore(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("認証情報ストアの初期化に失敗: %w", err)
	}
	if err := credStore.Seed(ctx, defaultCredentials); err != nil {
		return nil, fmt.Errorf("認証情報のシードに失敗: %w", err)
	}

	store, err := kvs.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("バックエンドへの接続に失敗: %w", err)
	}

	s := newServer(cfg, store, credStore, sqlDB)

	if err := s.catalog.EnsureSeeded(ctx, cfg.SeedProducts); err != nil {
		return nil, fmt.Errorf("商品データのシードに失敗: %w", err)
	}

	return s, nil
}

// newServer は依存を注入してサーバーを組み立てる。
// テストではインメモリのストアを渡してこの関数を直接使う。
func newServer(cfg Config, store kvs.Store, credStore *auth.Store, db *sql.DB) *Server {
	tokens := token.NewService(cfg.JWTSecret, cfg.TokenTTL)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router:  router,
		cfg:     cfg,
		store:   store,
		auth:    auth.NewService(credStore, tokens),
		tokens:  tokens,
		limiter: ratelimit.New(store, cfg.RateLimitWindow, cfg.RateLimitMax),
		cache:   cache.New(store),
		catalog: catalog.NewService(store),
		db:      db,
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// トークン発行（認証不要・フォームボディで認証情報を受け取る）
	s.router.POST("/token", s.handleIssueToken())

	// キャッシュ経由の商品一覧（認証不要）
	s.router.GET("/cached_products/", s.handleCachedProducts())

	// バックエンドの疎通確認
	s.router.GET("/health", s.handleHealth())

	// 認証とレート制限を通るパイプライン
	products := s.router.Group("/products")
	products.Use(s.authRequired())
	products.Use(s.rateLimited())
	{
		products.GET("/", s.handleListProducts())
		products.POST("/", s.handleCreateProduct())
	}

	// 未定義のパスも理由コード付きで終端する
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": reasonNotFound})
	})
}

// tokenResponse はトークン発行のJSONレスポンス構造。
type tokenResponse struct {
	// AccessToken は発行されたセッショントークン。
	AccessToken string `json:"access_token"`
	// TokenType はトークン種別。常に"bearer"。
	TokenType string `json:"token_type"`
}

// handleIssueToken はユーザー名とシークレットを検証してトークンを
// 発行するハンドラを返す。認証情報が不正な場合は400を返す。
func (s *Server) handleIssueToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")
		if username == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": reasonInvalidRequest})
			return
		}

		identity, err := s.auth.Authenticate(c.Request.Context(), username, password)
		if errors.Is(err, auth.ErrAuthFailed) {
			log.Printf("認証失敗: user=%s", username)
			c.JSON(http.StatusBadRequest, gin.H{"error": reasonAuthFailed})
			return
		}
		if err != nil {
			log.Printf("認証処理エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": reasonInternal})
			return
		}

		tokenStr, err := s.tokens.Issue(identity.Username)
		if err != nil {
			log.Printf("トークン発行エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": reasonInternal})
			return
		}

		c.JSON(http.StatusOK, tokenResponse{
			AccessToken: tokenStr,
			TokenType:   "bearer",
		})
	}
}

// productsResponse は商品一覧のJSONレスポンス構造。
type productsResponse struct {
	// Products は商品の一覧。
	Products []catalog.Product `json:"products"`
}

// handleListProducts は商品一覧を返すハンドラを返す。
// 下流ディスパッチにはルート単位のタイムアウトを適用し、時間内に
// 完了しない場合は504で打ち切る。タイムアウトは呼び出し側の待機を
// 解除するだけで、実行中のバックエンド操作の中断はベストエフォート。
func (s *Server) handleListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RouteTimeout)
		defer cancel()

		products, err := s.catalog.List(ctx, s.cfg.ProductLimit)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			log.Printf("商品一覧がタイムアウト: user=%s", identityFrom(c).Username)
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": reasonTimeout})
			return
		case errors.Is(err, catalog.ErrNoProducts):
			c.JSON(http.StatusNotFound, gin.H{"error": reasonNotFound})
			return
		case err != nil:
			log.Printf("商品一覧の取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": reasonBackendUnavailable})
			return
		}

		c.JSON(http.StatusOK, productsResponse{Products: products})
	}
}

// createProductRequest は商品作成リクエストのJSON構造。
type createProductRequest struct {
	// Name は商品名。
	Name string `json:"name" binding:"required"`
	// Brand はブランド名。
	Brand string `json:"brand" binding:"required"`
	// Category は商品カテゴリ。
	Category string `json:"category" binding:"required"`
	// Price は価格。
	Price float64 `json:"price"`
	// Stock は在庫数。
	Stock int `json:"stock"`
	// SKU は在庫管理単位の識別子。
	SKU string `json:"sku"`
	// ReleaseDate は発売日（YYYY-MM-DD）。
	ReleaseDate string `json:"release_date"`
	// Description は商品説明。
	Description string `json:"description"`
	// Features は特徴の一覧。
	Features string `json:"features"`
	// Warranty は保証期間。
	Warranty string `json:"warranty"`
	// Rating は評価値。
	Rating float64 `json:"rating"`
	// Dimensions は寸法。
	Dimensions string `json:"dimensions"`
	// Weight は重量。
	Weight string `json:"weight"`
	// Color は色。
	Color string `json:"color"`
	// Material は素材。
	Material string `json:"material"`
}

// handleCreateProduct は商品を作成するハンドラを返す。
// IDはカタログサービスがアトミックなカウンタで採番する。
func (s *Server) handleCreateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": reasonInvalidRequest})
			return
		}

		created, err := s.catalog.Create(c.Request.Context(), catalog.Product{
			Name:        req.Name,
			Brand:       req.Brand,
			Category:    req.Category,
			Price:       req.Price,
			Stock:       req.Stock,
			SKU:         req.SKU,
			ReleaseDate: req.ReleaseDate,
			Description: req.Description,
			Features:    req.Features,
			Warranty:    req.Warranty,
			Rating:      req.Rating,
			Dimensions:  req.Dimensions,
			Weight:      req.Weight,
			Color:       req.Color,
			Material:    req.Material,
		})
		if err != nil {
			log.Printf("商品作成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": reasonBackendUnavailable})
			return
		}

		c.JSON(http.StatusCreated, created)
	}
}

// handleCachedProducts はキャッシュ経由で商品一覧を返すハンドラを返す。
// キャッシュヒット時は下流サービスを呼ばずに保存済みペイロードを返す。
// ミス時は商品一覧を取得し、設定されたTTLでキャッシュに投入してから
// 返す。ヒットとミスでレスポンスの形は同一になる。
// キャッシュの読み取り失敗はミスとして扱わずエラーとして返す。
// 「データがない」と「バックエンドが落ちている」を運用上区別するため。
func (s *Server) handleCachedProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		payload, hit, err := s.cache.Get(ctx, cachedProductsKey)
		if err != nil {
			log.Printf("キャッシュ読み取りエラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": reasonBackendUnavailable})
			return
		}
		if hit {
			c.Data(http.StatusOK, "application/json", payload)
			return
		}

		products, err := s.catalog.List(ctx, s.cfg.ProductLimit)
		switch {
		case errors.Is(err, catalog.ErrNoProducts):
			c.JSON(http.StatusNotFound, gin.H{"error": reasonNotFound})
			return
		case err != nil:
			log.Printf("商品一覧の取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": reasonBackendUnavailable})
			return
		}

		body, err := json.Marshal(productsResponse{Products: products})
		if err != nil {
			log.Printf("レスポンスのシリアライズに失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": reasonInternal})
			return
		}

		// キャッシュ投入はベストエフォート。書き込みに失敗しても
		// 計算済みのレスポンスはそのまま返す。
		if err := s.cache.Put(ctx, cachedProductsKey, body, s.cfg.CacheTTL); err != nil {
			log.Printf("キャッシュ投入エラー: %v", err)
		}

		c.Data(http.StatusOK, "application/json", body)
	}
}

// handleHealth はキーバリューバックエンドへの疎通を確認するハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			log.Printf("バックエンド疎通確認エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": reasonBackendUnavailable})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
