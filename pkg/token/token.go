package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL はトークンの既定の有効期間。
const DefaultTTL = 30 * time.Minute

// issuer はトークンのiss（発行者）クレームの値。
const issuer = "gatekeeper"

var (
	// ErrMalformed はトークンがパースできないことを表す。
	ErrMalformed = errors.New("token: malformed token")
	// ErrInvalidSignature は署名が現在の秘密鍵で検証できないことを表す。
	ErrInvalidSignature = errors.New("token: invalid signature")
	// ErrExpired はトークンの有効期限が切れていることを表す。
	ErrExpired = errors.New("token: token expired")
)

// Claims はトークンに埋め込まれるクレーム。
// Subjectには認証済みユーザーのユーザー名が入る。
type Claims struct {
	jwt.RegisteredClaims
}

// Service はトークンの発行と検証を行う。
// プロセス全体で共有される署名秘密鍵と時計を持つ。
type Service struct {
	// secret はHS256署名用の秘密鍵。
	secret []byte
	// defaultTTL は呼び出し側がTTLを指定しない場合の有効期間。
	defaultTTL time.Duration
	// now は現在時刻の取得関数。テストで差し替える。
	now func() time.Time
}

// Option はServiceの生成オプション。
type Option func(*Service)

// WithClock は現在時刻の取得関数を差し替える。
// 有効期限のテストで時刻を進めるために使用する。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService は新しいトークンサービスを生成する。
// defaultTTLが0以下の場合はDefaultTTLを使用する。
func NewService(secret string, defaultTTL time.Duration, opts ...Option) *Service {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	s := &Service{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue は指定したサブジェクトのトークンを発行する。
// ttlを指定した場合はそれを、省略した場合は既定のTTLを有効期間とする。
func (s *Service) Issue(subject string, ttl ...time.Duration) (string, error) {
	expire := s.defaultTTL
	if len(ttl) > 0 && ttl[0] > 0 {
		expire = ttl[0]
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、埋め込まれたクレームを返す。
// 署名不一致はErrInvalidSignature、期限切れはErrExpired、
// パース不能はErrMalformedを返す。
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}
	if !t.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}
