// Package token は署名付きセッショントークンの発行と検証を提供する。
//
// トークンはHS256で署名された自己完結型のJWTであり、サーバー側に
// 状態を持たない。有効期限切れまたは署名秘密鍵のローテーションに
// よってのみ無効化される。
package token
