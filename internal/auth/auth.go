package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/logging"
)

const UserHeader = "X-User-Id"

var ErrNoToken = errors.New("missing bearer token")

// Authenticator определяет пользователя запроса: из JWT (claim sub),
// а без секрета — из заголовка X-User-Id (внутренняя сеть, тесты).
type Authenticator struct {
	secret []byte
}

func New(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Enabled() bool { return len(a.secret) > 0 }

// Actor разбирает запрос и возвращает имя пользователя.
func (a *Authenticator) Actor(r *http.Request) (string, error) {
	if !a.Enabled() {
		return strings.TrimSpace(r.Header.Get(UserHeader)), nil
	}
	h := r.Header.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrNoToken
	}
	tok, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := a.Actor(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, aftercare.Fail[aftercare.Void]("unauthorized"))
			return
		}
		if actor != "" {
			c.Set(logging.ActorKey, actor)
			c.Request = c.Request.WithContext(aftercare.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}

// Issue подписывает токен; используется в тестах и служебных скриптах.
func (a *Authenticator) Issue(subject string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = subject
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
