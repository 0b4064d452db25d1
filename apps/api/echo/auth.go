package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
	sessionsvc "github.com/trezcool/alama/services/session"
)

const (
	contextTokenKey = "userToken"
	bearerPrefix    = "Bearer "
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// Claims represents the authorization claims transmitted via a JWT.
// The token ID (jti) is what logout revokes.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
	Role         string `json:"role,omitempty"`
}

func (c Claims) Identity() user.Identity {
	return user.Identity{Username: c.Username, Role: c.Role}
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   usr.Username,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Role:         usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	jwtCfg := newJWTConfig(conf)
	token := jwt.NewWithClaims(jwt.GetSigningMethod(jwtCfg.SigningMethod), claims)

	ss, err := token.SignedString(jwtCfg.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// parseRequestToken reads the bearer token of requests not guarded by the JWT middleware.
func parseRequestToken(ctx echo.Context, conf *core.Config) (Claims, error) {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, bearerPrefix) {
		return Claims{}, errUnauthorized
	}

	claims := new(Claims)
	token, err := jwt.ParseWithClaims(auth[len(bearerPrefix):], claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, errUnauthorized
	}
	return *claims, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextIdentity returns the caller, or the anonymous Identity.
func getContextIdentity(ctx echo.Context) user.Identity {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.Identity{}
	}
	return claims.Identity()
}

func checkRevoked(ctx echo.Context, sessions sessionsvc.Store, claims Claims) error {
	revoked, err := sessions.IsRevoked(ctx.Request().Context(), claims.Id)
	if err != nil {
		return errors.Wrap(err, "checking token revocation")
	}
	if revoked {
		return errUnauthorized
	}
	return nil
}

func refreshToken(ctx echo.Context, conf *core.Config, svc *user.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// the account may have been removed, or its role changed
	usr, err := svc.GetByUsername(ctx.Request().Context(), claims.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", errUnauthorized
		}
		return "", errors.Wrap(err, "finding user by username")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := GenerateToken(conf, GetUserClaims(conf, usr, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}
