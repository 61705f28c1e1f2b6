package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// スキーマ定義。identitiesテーブルは起動時のシード以降変更されない。
const schema = `
CREATE TABLE IF NOT EXISTS identities (
    username TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    secret_hash TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1
);
`

// Identity は認証済みの主体を表す。
// シークレットのハッシュは含まない（呼び出し側に漏らさない）。
type Identity struct {
	// Username はユーザーの一意識別子。
	Username string
	// DisplayName は表示名。
	DisplayName string
	// Active はアカウントが有効かどうか。
	Active bool
}

// Credential はシード投入用の認証情報。Secretは平文で受け取り、
// 保存時にbcryptでハッシュ化される。
type Credential struct {
	// Username はユーザーの一意識別子。
	Username string
	// DisplayName は表示名。
	DisplayName string
	// Secret は平文のシークレット。
	Secret string
	// Active はアカウントが有効かどうか。
	Active bool
}

// identityRecord はストアに保存される認証レコード。
type identityRecord struct {
	username    string
	displayName string
	secretHash  string
	active      bool
}

// Store はSQLiteに保持される認証情報ストア。
// 生成時に注入され、プロセス全体の可変なシングルトンは持たない。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewStore は新しい認証情報ストアを生成し、スキーマを適用する。
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return &Store{db: db}, nil
}

// Seed は固定の認証情報リストをストアに投入する。
// 既存の同名レコードは上書きされる。プロセス起動時に一度だけ呼ばれる。
func (s *Store) Seed(ctx context.Context, credentials []Credential) error {
	for _, c := range credentials {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Secret), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("シークレットのハッシュ化に失敗: %w", err)
		}

		active := 0
		if c.Active {
			active = 1
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO identities (username, display_name, secret_hash, active) VALUES (?, ?, ?, ?)`,
			c.Username, c.DisplayName, string(hash), active,
		); err != nil {
			return fmt.Errorf("認証情報の投入に失敗: %w", err)
		}
	}
	return nil
}

// lookup はユーザー名で認証レコードを取得する。
// ユーザー名は大文字小文字を区別して完全一致で照合する。
func (s *Store) lookup(ctx context.Context, username string) (identityRecord, error) {
	var rec identityRecord
	var active int
	err := s.db.QueryRowContext(ctx,
		`SELECT username, display_name, secret_hash, active FROM identities WHERE username = ?`,
		username,
	).Scan(&rec.username, &rec.displayName, &rec.secretHash, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return identityRecord{}, ErrAuthFailed
	}
	if err != nil {
		return identityRecord{}, fmt.Errorf("認証レコードの取得に失敗: %w", err)
	}
	rec.active = active != 0
	return rec, nil
}
