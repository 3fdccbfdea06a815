package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
)

const passwordResetSent = "If the email address supplied is associated with an account on this system, " +
	"an email will arrive in your inbox shortly with instructions to reset your password."

type accountApi struct {
	svc      *account.Service
	tokens   tokenIssuer
	validate *validator.Validate
	logger   core.Logger
}

func registerAccountAPI(g *echo.Group, s *server) {
	api := accountApi{
		svc:      s.deps.AccountSvc,
		tokens:   s.tokens,
		validate: s.deps.Validate,
		logger:   s.deps.Logger,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/refresh", api.refresh)
	ag.POST("/register", api.register)
	ag.POST("/password-reset", api.requestPasswordReset)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	authed := s.require(account.TierAuthenticated)
	ag.GET("/me", api.me, authed)
	ag.GET("/profile", api.profile, authed)
	ag.PUT("/profile", api.updateProfile, authed)
}

type (
	LoginRequest struct {
		Username string `json:"username" form:"username" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	RefreshRequest struct {
		RefreshToken string `json:"refresh_token" form:"refresh_token" validate:"required"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

// Handlers

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return err
	}
	pair, err := api.tokens.pair(acc)
	if err != nil {
		return errors.Wrap(err, "generating tokens")
	}
	return ctx.JSON(http.StatusOK, pair)
}

func (api *accountApi) refresh(ctx echo.Context) error {
	var data RefreshRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RefreshRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	claims, err := api.tokens.parse(data.RefreshToken, tokenKindRefresh)
	if err != nil {
		return err
	}
	acc, err := api.svc.GetByUsername(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return account.ErrInvalidToken
		}
		return errors.Wrap(err, "getting account")
	}
	pair, err := api.tokens.pair(acc)
	if err != nil {
		return errors.Wrap(err, "generating tokens")
	}
	return ctx.JSON(http.StatusOK, pair)
}

// register is public, except that creating an Admin requires an Admin's access token.
func (api *accountApi) register(ctx echo.Context) error {
	var data account.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if data.Role == account.RoleAdmin {
		token, ok := bearerToken(ctx.Request())
		if !ok {
			return errNotAuthenticated
		}
		claims, err := api.tokens.parse(token, tokenKindAccess)
		if err != nil {
			return err
		}
		if _, err = api.svc.Authorize(ctx.Request().Context(), claims.Subject, account.TierAdmin); err != nil {
			return err
		}
	}

	acc, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, acc.Summary())
}

func (api *accountApi) me(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acc.Summary())
}

func (api *accountApi) profile(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.Profile(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *accountApi) updateProfile(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}

	var data account.ProfileUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileUpdate")
	}
	if err = data.Validate(acc, api.validate); err != nil {
		return err
	}
	if err = api.svc.UpdateProfile(ctx.Request().Context(), acc, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Profile updated successfully"})
}

func (api *accountApi) requestPasswordReset(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); err != nil &&
		errors.Cause(err) != account.ErrNotFound {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: passwordResetSent})
}

func (api *accountApi) confirmPasswordReset(ctx echo.Context) error {
	var data account.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Password has been reset with the new password."})
}
