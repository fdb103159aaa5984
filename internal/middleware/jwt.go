package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"saveeat/internal/common"
	"saveeat/internal/config"
)

var errNoToken = errors.New("missing token")

// Authenticator verifies bearer tokens issued by the external identity provider.
// Tokens are checked against a JWKS endpoint when configured, otherwise against
// a shared HS256 secret.
type Authenticator struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	jwks    *keyfunc.JWKS
}

func NewAuthenticator(ctx context.Context, cfg config.AuthConfig, logger *zap.Logger) (*Authenticator, error) {
	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn("jwks refresh failed", zap.String("url", cfg.JWKSURL), zap.Error(err))
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load jwks: %w", err)
		}
		a := newAuthenticator(jwks.Keyfunc, []string{"RS256", "ES256"}, cfg.Audience)
		a.jwks = jwks
		return a, nil
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("no jwt verification key configured")
	}
	secret := []byte(cfg.JWTSecret)
	return newAuthenticator(func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, []string{"HS256"}, cfg.Audience), nil
}

func newAuthenticator(kf jwt.Keyfunc, methods []string, audience string) *Authenticator {
	opts := []jwt.ParserOption{jwt.WithValidMethods(methods), jwt.WithExpirationRequired()}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Authenticator{keyfunc: kf, parser: jwt.NewParser(opts...)}
}

// Close stops the background JWKS refresh
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

func (a *Authenticator) userID(r *http.Request) (uuid.UUID, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, errNoToken
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return uuid.Nil, errors.New("invalid token format")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := a.parser.ParseWithClaims(tokenString, claims, a.keyfunc)
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("invalid user_id format")
	}
	return userID, nil
}

// RequireAuth rejects requests without a valid token
func (a *Authenticator) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := a.userID(c.Request())
			if err != nil {
				if errors.Is(err, errNoToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			c.SetRequest(c.Request().WithContext(common.WithUserID(c.Request().Context(), userID)))
			return next(c)
		}
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through otherwise
func (a *Authenticator) OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID, err := a.userID(c.Request()); err == nil {
				c.SetRequest(c.Request().WithContext(common.WithUserID(c.Request().Context(), userID)))
			}
			return next(c)
		}
	}
}
