package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nao1215/gatekeeper/pkg/token"
)

// newTestStore はインメモリSQLiteを使うテスト用の認証情報ストアを生成する。
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	if err != nil {
		t.Fatalf("ストアの生成に失敗: %v", err)
	}
	return store
}

// seedTestUser はテスト用の認証情報を投入する。
func seedTestUser(t *testing.T, store *Store, username, secret string, active bool) {
	t.Helper()

	if err := store.Seed(context.Background(), []Credential{
		{Username: username, DisplayName: "テストユーザー", Secret: secret, Active: active},
	}); err != nil {
		t.Fatalf("テスト用認証情報の投入に失敗: %v", err)
	}
}

// TestServiceAuthenticate はユーザー名とシークレットの検証を確認する。
func TestServiceAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("正しい組み合わせでアイデンティティが返ること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		seedTestUser(t, store, "gyanranjan@example.com", "Gyan@123", true)
		s := NewService(store, token.NewService("test-secret", 0))

		identity, err := s.Authenticate(context.Background(), "gyanranjan@example.com", "Gyan@123")
		if err != nil {
			t.Fatalf("Authenticate()でエラーが発生: %v", err)
		}
		if identity.Username != "gyanranjan@example.com" {
			t.Errorf("Username = %q, want %q", identity.Username, "gyanranjan@example.com")
		}
		if identity.DisplayName != "テストユーザー" {
			t.Errorf("DisplayName = %q, want %q", identity.DisplayName, "テストユーザー")
		}
	})

	t.Run("誤ったシークレットでErrAuthFailedが返ること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		seedTestUser(t, store, "user@example.com", "correct-secret", true)
		s := NewService(store, token.NewService("test-secret", 0))

		_, err := s.Authenticate(context.Background(), "user@example.com", "wrong-secret")
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("Authenticate() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("存在しないユーザーでErrAuthFailedが返ること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		s := NewService(store, token.NewService("test-secret", 0))

		_, err := s.Authenticate(context.Background(), "nobody@example.com", "secret")
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("Authenticate() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("ユーザー名の照合が大文字小文字を区別すること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		seedTestUser(t, store, "user@example.com", "secret", true)
		s := NewService(store, token.NewService("test-secret", 0))

		_, err := s.Authenticate(context.Background(), "User@example.com", "secret")
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("Authenticate() error = %v, want ErrAuthFailed", err)
		}
	})
}

// TestServiceResolveToken はトークンからのアイデンティティ解決を確認する。
func TestServiceResolveToken(t *testing.T) {
	t.Parallel()

	t.Run("有効なトークンでアイデンティティが返ること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		seedTestUser(t, store, "user@example.com", "secret", true)
		tokens := token.NewService("test-secret", 0)
		s := NewService(store, tokens)

		tokenStr, err := tokens.Issue("user@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		identity, err := s.ResolveToken(context.Background(), tokenStr)
		if err != nil {
			t.Fatalf("ResolveToken()でエラーが発生: %v", err)
		}
		if identity.Username != "user@example.com" {
			t.Errorf("Username = %q, want %q", identity.Username, "user@example.com")
		}
	})

	t.Run("無効なトークンでErrAuthFailedが返ること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		s := NewService(store, token.NewService("test-secret", 0))

		_, err := s.ResolveToken(context.Background(), "invalid-token")
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("ResolveToken() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("期限切れトークンでErrAuthFailedが返ること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		seedTestUser(t, store, "user@example.com", "secret", true)

		current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		tokens := token.NewService("test-secret", 0, token.WithClock(func() time.Time { return current }))
		s := NewService(store, tokens)

		tokenStr, err := tokens.Issue("user@example.com", time.Minute)
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		current = current.Add(2 * time.Minute)
		_, err = s.ResolveToken(context.Background(), tokenStr)
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("ResolveToken() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("サブジェクトがストアに存在しない場合ErrAuthFailedが返ること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		tokens := token.NewService("test-secret", 0)
		s := NewService(store, tokens)

		tokenStr, err := tokens.Issue("ghost@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		_, err = s.ResolveToken(context.Background(), tokenStr)
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("ResolveToken() error = %v, want ErrAuthFailed", err)
		}
	})

	t.Run("無効化されたアカウントでErrInactiveAccountが返ること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		seedTestUser(t, store, "disabled@example.com", "secret", false)
		tokens := token.NewService("test-secret", 0)
		s := NewService(store, tokens)

		tokenStr, err := tokens.Issue("disabled@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		_, err = s.ResolveToken(context.Background(), tokenStr)
		if !errors.Is(err, ErrInactiveAccount) {
			t.Errorf("ResolveToken() error = %v, want ErrInactiveAccount", err)
		}
	})
}

// TestStoreSeed はシード投入の上書き動作を確認する。
func TestStoreSeed(t *testing.T) {
	t.Parallel()

	t.Run("同名の認証情報が上書きされること", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx := context.Background()

		seedTestUser(t, store, "user@example.com", "old-secret", true)
		seedTestUser(t, store, "user@example.com", "new-secret", true)

		s := NewService(store, token.NewService("test-secret", 0))
		if _, err := s.Authenticate(ctx, "user@example.com", "old-secret"); !errors.Is(err, ErrAuthFailed) {
			t.Errorf("旧シークレットでの認証がErrAuthFailedになるべき: %v", err)
		}
		if _, err := s.Authenticate(ctx, "user@example.com", "new-secret"); err != nil {
			t.Errorf("新シークレットでの認証に失敗: %v", err)
		}
	})
}
