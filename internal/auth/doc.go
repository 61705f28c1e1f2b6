// Package auth は認証情報ストアと認証サービスを提供する。
//
// 認証情報ストアはSQLiteに保持されるユーザー名からの認証レコードの
// 対応表であり、プロセス起動時に固定のシードリストから投入された後は
// 実行時に変更されない。認証サービスはユーザー名とシークレットの組の
// 検証、およびセッショントークンからのアイデンティティ解決を行う。
// どちらの操作も読み取り専用で、失敗したリクエストの自動リトライは
// 行わない。
package auth
