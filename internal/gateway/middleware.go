package gateway

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/gatekeeper/internal/auth"
)

// 失敗レスポンスに含める安定した機械可読の理由コード。
const (
	reasonAuthFailed         = "auth_failed"
	reasonInactiveAccount    = "inactive_account"
	reasonRateLimitExceeded  = "rate_limit_exceeded"
	reasonNotFound           = "not_found"
	reasonInvalidRequest     = "invalid_request"
	reasonBackendUnavailable = "backend_unavailable"
	reasonTimeout            = "timeout"
	reasonInternal           = "internal"
)

// ctxKeyIdentity はGinコンテキストに認証済みアイデンティティを
// 格納するためのキー。
const ctxKeyIdentity = "identity"

// authRequired はパイプラインの第1段（認証）を行うミドルウェアを返す。
// Bearerトークンを抽出してアイデンティティへ解決し、失敗した場合は
// 401で終端する。解決済みのアイデンティティはコンテキストに設定する。
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reasonAuthFailed})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reasonAuthFailed})
			return
		}

		identity, err := s.auth.ResolveToken(c.Request.Context(), tokenString)
		switch {
		case errors.Is(err, auth.ErrInactiveAccount):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reasonInactiveAccount})
			return
		case errors.Is(err, auth.ErrAuthFailed):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reasonAuthFailed})
			return
		case err != nil:
			log.Printf("トークン解決エラー: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": reasonInternal})
			return
		}

		c.Set(ctxKeyIdentity, identity)
		c.Next()
	}
}

// rateLimited はパイプラインの第2段（レート制限）を行うミドルウェアを返す。
// クライアント識別子はヘッダーではなく認証済みアイデンティティから導出する。
// ヘッダー偽装によるカウンタの付け替えを防ぐため。
func (s *Server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := identityFrom(c)

		admitted, err := s.limiter.Check(c.Request.Context(), identity.Username)
		if err != nil {
			log.Printf("レートリミット判定エラー: user=%s, error=%v", identity.Username, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": reasonBackendUnavailable})
			return
		}
		if !admitted {
			log.Printf("レート制限超過: user=%s", identity.Username)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": reasonRateLimitExceeded})
			return
		}

		c.Next()
	}
}

// identityFrom はGinコンテキストから認証済みアイデンティティを取得する。
// authRequiredミドルウェアが事前に適用されている必要がある。
func identityFrom(c *gin.Context) auth.Identity {
	v, _ := c.Get(ctxKeyIdentity)
	if identity, ok := v.(auth.Identity); ok {
		return identity
	}
	return auth.Identity{}
}
