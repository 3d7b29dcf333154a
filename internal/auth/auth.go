// Package auth verifies the HMAC bearer tokens issued by the app gateway.
// Credential issuance (signup, login, OAuth, OTP) lives with the gateway;
// this service only checks signatures and extracts the user identity.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AccessTokenDuration bounds tokens minted by IssueAccessToken. The gateway
// uses the same window.
const AccessTokenDuration = 15 * time.Minute

type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Auth holds the shared HMAC secret. The value is threaded in from config
// rather than read from the environment at call time.
type Auth struct {
	secret []byte
}

func New(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// IssueAccessToken mints a short-lived token for the given user. Used by the
// gateway handshake and by tests.
func (a *Auth) IssueAccessToken(userID string) (string, error) {
	claims := &JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Middleware authenticates the Bearer token and stores the user ID in the
// echo context under "user_id".
func (a *Auth) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing bearer token"})
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			log.Warn().Err(err).Msg("Token validation failed")
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		claims, ok := token.Claims.(*JwtCustomClaims)
		if !ok || claims.UserID == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token claims"})
		}

		c.Set("user_id", claims.UserID)
		return next(c)
	}
}
