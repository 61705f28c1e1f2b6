// Package kvs はキーバリューバックエンドの抽象化を提供する。
//
// レートリミッター・レスポンスキャッシュ・商品カタログが共有する
// 単一名前空間のストアを表す。本番実装はRedis、テスト用に
// インメモリ実装を提供する。キーの不在（ErrNotFound）と
// バックエンド障害は区別して返す。
package kvs
