// Package middleware provides authentication, logging, and rate limiting middleware.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"laurel/internal/config"
	"laurel/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// Token issuer and audience claims minted at login and enforced here.
const (
	TokenIssuer   = "laurel-api"
	TokenAudience = "laurel-client"
)

var (
	cfg       *config.Config
	authRedis *redis.Client
)

// InitMiddleware initializes authentication middleware with the given config.
// The redis client may be nil; revocation checks are skipped without it.
func InitMiddleware(c *config.Config, r *redis.Client) {
	cfg = c
	authRedis = r
}

// AuthRequired is a middleware that enforces authentication for protected
// routes. It validates the bearer token's signature, issuer, audience and
// revocation state, then stores the user ID in locals and the user context.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	tokenString := ""
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token claims"))
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != TokenIssuer {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token issuer"))
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != TokenAudience {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid token audience"))
	}

	// Extract user ID from "sub" claim (subject claim per RFC 7519)
	sub, ok := claims["sub"].(string)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid subject claim"))
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid user ID in token"))
	}

	// Check JTI for revocation
	if jti, exists := claims["jti"].(string); exists && jti != "" {
		if authRedis != nil {
			isBlacklisted, err := authRedis.Exists(c.Context(), "blacklist:"+jti).Result()
			if err == nil && isBlacklisted > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}
	}

	c.Locals("userID", uint(userID))
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), UserIDKey, uint(userID))
	c.SetUserContext(ctx)

	return c.Next()
}
