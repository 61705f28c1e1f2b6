// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// パニックリカバリとCORS設定を含む。認証・レート制限など
// ゲートウェイのパイプライン固有の段はinternal/gateway側に置く。
package middleware
