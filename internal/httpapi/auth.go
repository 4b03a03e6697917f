package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const callerIDKey = "phishguard.caller_id"

// CallerIdentity returns a Gin middleware that derives the caller identity
// used for per-caller rate limiting and report attribution.
//
// When a JWT secret is configured and the request carries a valid HS256
// bearer token, the token subject identifies the caller; otherwise the
// client IP does. Invalid tokens are not fatal — the caller just falls back
// to IP identity.
func CallerIdentity(jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.ClientIP()

		if jwtSecret != "" {
			if sub := subjectFromBearer(c.GetHeader("Authorization"), jwtSecret, logger); sub != "" {
				id = "user:" + sub
			}
		}

		c.Set(callerIDKey, id)
		c.Next()
	}
}

// callerID reads the identity set by CallerIdentity, falling back to the
// client IP when the middleware is not installed.
func callerID(c *gin.Context) string {
	if v, ok := c.Get(callerIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return c.ClientIP()
}

func subjectFromBearer(header, secret string, logger *zap.Logger) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, prefix), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		logger.Debug("bearer token rejected, falling back to IP identity", zap.Error(err))
		return ""
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
