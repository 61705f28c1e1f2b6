// Package cache は計算済みレスポンスの保存と取得を提供する。
//
// 値はこの層にとって不透明なシリアライズ済みペイロードであり、
// 内容の解釈は行わない。明示的な無効化操作は持たず、鮮度は
// 有効期限（TTL）のみで制御される。期限切れの掃除はバックエンドに
// 任せる。
package cache
