package echoapi

import (
	"encoding/json"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
	sessionsvc "github.com/trezcool/alama/services/session"
)

type accountApi struct {
	conf       *core.Config
	svc        *user.Service
	sessions   sessionsvc.Store
	captcha    *sessionsvc.CaptchaService
	validate   *validator.Validate
	translator ut.Translator
}

func registerAccountAPI(g *echo.Group, authed []echo.MiddlewareFunc, api accountApi) {
	// un-authed endpoints
	g.GET("/captcha", api.newCaptcha)
	g.POST("/login", api.login)
	g.POST("/register", api.register)
	g.GET("/check-auth", api.checkAuth) // answers anonymous callers itself

	// authed endpoints
	g.POST("/logout", api.logout, authed...)
	g.POST("/token-refresh", api.refreshToken, authed...)
}

// Handlers

func (api *accountApi) newCaptcha(ctx echo.Context) error {
	ch, err := api.captcha.New(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "creating captcha")
	}
	return ctx.JSON(http.StatusOK, ch)
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if err := api.captcha.Verify(reqCtx, data.CaptchaID, data.CaptchaAnswer.String()); err != nil {
		return err
	}
	usr, err := api.svc.Authenticate(reqCtx, data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    usr.Identity(),
	})
}

func (api *accountApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{
		Message: "Registration successful",
		User:    usr.Identity(),
	})
}

func (api *accountApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.sessions.Revoke(ctx.Request().Context(), claims.Id, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return errors.Wrap(err, "revoking token")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (api *accountApi) checkAuth(ctx echo.Context) error {
	claims, err := parseRequestToken(ctx, api.conf)
	if err == nil {
		err = checkRevoked(ctx, api.sessions, claims)
	}
	if err != nil {
		if errors.Cause(err) == errUnauthorized {
			return ctx.JSON(http.StatusUnauthorized, CheckAuthResponse{Authenticated: false})
		}
		return err
	}
	id := claims.Identity()
	return ctx.JSON(http.StatusOK, CheckAuthResponse{Authenticated: true, User: &id})
}

func (api *accountApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

type (
	LoginRequest struct {
		Username      string      `json:"username" validate:"required"`
		Password      string      `json:"password" validate:"required"`
		CaptchaID     string      `json:"captcha_id"`
		CaptchaAnswer json.Number `json:"captcha_answer"` // number or numeric string
	}

	LoginResponse struct {
		Message string        `json:"message"`
		Token   string        `json:"token"`
		User    user.Identity `json:"user"`
	}

	RegisterResponse struct {
		Message string        `json:"message"`
		User    user.Identity `json:"user"`
	}

	CheckAuthResponse struct {
		Authenticated bool           `json:"authenticated"`
		User          *user.Identity `json:"user,omitempty"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username)
	return validate.Struct(lr)
}
