package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/nao1215/gatekeeper/pkg/token"
)

var (
	// ErrAuthFailed はユーザー名またはシークレットの検証に失敗したことを表す。
	// ユーザーの不在とシークレット不一致は呼び出し側から区別できない。
	ErrAuthFailed = errors.New("auth: authentication failed")
	// ErrInactiveAccount はアカウントが無効化されていることを表す。
	ErrInactiveAccount = errors.New("auth: inactive account")
)

// Service はユーザー名とシークレットの検証、およびトークンからの
// アイデンティティ解決を行う認証サービス。
type Service struct {
	// store は認証情報ストア。
	store *Store
	// tokens はセッショントークンの検証に使用するトークンサービス。
	tokens *token.Service
}

// NewService は新しい認証サービスを生成する。
func NewService(store *Store, tokens *token.Service) *Service {
	return &Service{store: store, tokens: tokens}
}

// Authenticate はユーザー名とシークレットの組を検証し、成功時に
// アイデンティティを返す。ユーザーが存在しない場合もシークレットが
// 一致しない場合もErrAuthFailedを返す。シークレットの照合はbcryptの
// 比較で行うため、タイミング差からハッシュを推測されることはない。
func (s *Service) Authenticate(ctx context.Context, username, secret string) (Identity, error) {
	rec, err := s.store.lookup(ctx, username)
	if err != nil {
		return Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.secretHash), []byte(secret)); err != nil {
		return Identity{}, ErrAuthFailed
	}

	return Identity{
		Username:    rec.username,
		DisplayName: rec.displayName,
		Active:      rec.active,
	}, nil
}

// ResolveToken はセッショントークンを検証し、サブジェクトに対応する
// アイデンティティを返す。トークンが無効な場合、またはサブジェクトが
// ストアに存在しない場合はErrAuthFailedを返す。アカウントが無効化
// されている場合はErrInactiveAccountを返す。
func (s *Service) ResolveToken(ctx context.Context, tokenString string) (Identity, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return Identity{}, ErrAuthFailed
	}

	rec, err := s.store.lookup(ctx, claims.Subject)
	if err != nil {
		return Identity{}, err
	}
	if !rec.active {
		return Identity{}, ErrInactiveAccount
	}

	return Identity{
		Username:    rec.username,
		DisplayName: rec.displayName,
		Active:      rec.active,
	}, nil
}
