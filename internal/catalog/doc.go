// Package catalog は商品カタログサービスを提供する。
//
// ゲートウェイがプロキシする下流のリソースであり、カタログレコードの
// 読み取り・一覧・作成操作を持つ。レコードはキーバリューバックエンドの
// ハッシュ（product:{id}）に保存され、IDはアトミックなカウンタで
// 採番される。バックエンドが唯一の保存先であり、レスポンスキャッシュ層の
// 外でレコードをキャッシュすることはない。
package catalog
