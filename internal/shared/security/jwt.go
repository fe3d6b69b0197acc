package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrJWTSecretMissing = errors.New("jwt secret is not set")
	ErrTokenInvalid     = errors.New("token invalid")
)

// RoleAdmin 可以创建世界、推进天数；玩家 token 不带 role。
const RoleAdmin = "admin"

// Claims 是登录服签发给玩家的身份，world 服只校验不签发（Award 仅用于测试与本地调试）。
type Claims struct {
	KingdomID string `json:"kid"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrJWTSecretMissing
	}
	return &Verifier{secret: []byte(secret), now: time.Now}, nil
}

// Award 签发 HS256 玩家 token。
func (v *Verifier) Award(kingdomID, name string, ttl time.Duration) (string, error) {
	return v.AwardRole(kingdomID, name, "", ttl)
}

func (v *Verifier) AwardRole(kingdomID, name, role string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := &Claims{
		KingdomID: kingdomID,
		Name:      name,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   kingdomID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Parse 校验签名与过期时间，kid 为空视为非法。
func (v *Verifier) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Valid || claims.KingdomID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
