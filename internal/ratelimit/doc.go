// Package ratelimit はクライアント単位の固定ウィンドウ方式の
// レートリミッターを提供する。
//
// ウィンドウ境界をまたぐと最大で上限の2倍のリクエストが通過しうるが、
// これは固定ウィンドウ方式の既知の性質であり許容される。スライディング
// ウィンドウへの変更は意図的に行っていない。
package ratelimit
