// APIゲートウェイのエントリポイント。
// Bearerトークン認証、レート制限、レスポンスキャッシュ、商品カタログへの
// ディスパッチを1つのリクエストパイプラインとして提供する。
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/nao1215/gatekeeper/internal/gateway"
)

func main() {
	// .envはローカル開発用。存在しなくてもエラーにしない。
	if err := godotenv.Load(); err != nil {
		log.Printf(".envファイルを読み込めませんでした（環境変数を使用します）")
	}

	cfg := gateway.LoadConfig()

	server, err := gateway.NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("ゲートウェイの初期化に失敗: %v", err)
	}

	log.Printf("ゲートウェイを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("ゲートウェイの起動に失敗: %v", err)
	}
}
