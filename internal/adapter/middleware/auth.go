package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bonafide-backend/internal/domain/profile"
	ucProfile "bonafide-backend/internal/usecase/profile"
)

const actorKey = "actor"

// Claims is the token payload issued by the identity provider.
type Claims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Resolver maps a verified identity to a profile.
type Resolver interface {
	Resolve(ctx context.Context, id ucProfile.Identity) (*profile.Profile, error)
}

// Actor returns the authenticated profile, or nil on public routes.
func Actor(c echo.Context) *profile.Profile {
	p, _ := c.Get(actorKey).(*profile.Profile)
	return p
}

func SetActor(c echo.Context, p *profile.Profile) { c.Set(actorKey, p) }

func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	// browsers cannot set headers on websocket upgrades
	if c.Request().Method == http.MethodGet {
		return c.QueryParam("access_token")
	}
	return ""
}

func parseToken(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token payload")
	}
	return claims, nil
}

// JWTAuth verifies the bearer token and loads the caller's profile.
func JWTAuth(secret []byte, resolver Resolver, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearer(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			claims, err := parseToken(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}
			p, err := resolver.Resolve(c.Request().Context(), ucProfile.Identity{
				Subject:   claims.Subject,
				Email:     claims.Email,
				FirstName: claims.UserMetadata.FirstName,
				LastName:  claims.UserMetadata.LastName,
			})
			if err != nil {
				log.Error("profile lookup failed", zap.String("subject", claims.Subject), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
			SetActor(c, p)
			return next(c)
		}
	}
}

// RequireRoles lets the request through only when the actor has one of roles.
func RequireRoles(roles ...profile.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := Actor(c)
			if actor == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			}
			for _, r := range roles {
				if actor.Role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
