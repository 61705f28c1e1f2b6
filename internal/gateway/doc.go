// Package gateway はAPIゲートウェイのリクエストパイプラインを提供する。
//
// 受信リクエストごとに認証→レート制限→キャッシュ参照または下流
// ディスパッチ→キャッシュ投入の4段を順に実行し、各段は終端レスポンスへ
// 短絡できる。内部の失敗をHTTPステータスへ変換するのはこの層だけであり、
// 下位のサービスはトランスポートレベルのレスポンスを組み立てない。
// すべての失敗レスポンスは安定した機械可読の理由コードを持ち、
// 500レスポンスに内部のエラー詳細を含めることはない。
package gateway
