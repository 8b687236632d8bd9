package auth

import (
	"errors"
	"strconv"
	"time"

	"whatsledger/config"
	"whatsledger/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify an admin or a business account; Role tells which table AccountID refers to.
type Claims struct {
	AccountID uint   `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool { return c.Role == domain.RoleAdmin }

// BusinessID is the business the token acts for, or 0 for admin tokens.
func (c *Claims) BusinessID() uint {
	if c.Role != domain.RoleBusiness {
		return 0
	}
	return c.AccountID
}

// GenerateAccessToken signs an HS256 token for an account. Subject is "<role>:<id>".
func GenerateAccessToken(cfg *config.JWTConfig, accountID uint, email, role string) (string, error) {
	if role != domain.RoleAdmin && role != domain.RoleBusiness {
		return "", errors.New("unknown role " + strconv.Quote(role))
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: accountID,
		Email:     email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   role + ":" + strconv.FormatUint(uint64(accountID), 10),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessExpiry)),
		},
	})
	return token.SignedString([]byte(cfg.AccessSecret))
}

// ParseAccessToken verifies signature, expiry and issuer. Every failure is ErrInvalidToken.
func ParseAccessToken(cfg *config.JWTConfig, raw string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.AccessSecret), nil
	}, opts...)
	if err != nil || !token.Valid || claims.AccountID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
