package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

type JwtCustomClaim struct {
	UserId   int      `json:"uid"`
	TenantId int      `json:"tid"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
	jwt.StandardClaims
}

func getJwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return []byte("commerce-dev-secret")
	}
	return []byte(secret)
}

func TokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// JwtGenerate signs a token and returns it with its id (jti) and expiry.
func JwtGenerate(userId, tenantId int, name string, roles []string) (string, string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(TokenLifespan())
	tokenId := uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		UserId:   userId,
		TenantId: tenantId,
		Name:     name,
		Roles:    roles,
		StandardClaims: jwt.StandardClaims{
			Id:        tokenId,
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	token, err := t.SignedString(getJwtSecret())
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, tokenId, expiresAt, nil
}

func JwtValidate(token string) (*JwtCustomClaim, error) {
	parsed, err := jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return getJwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
