package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"

	contextTokenKey   = "token"
	contextAccountKey = "account"
)

var errNotAuthenticated = echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")

// Claims represents the authorization claims transmitted via a JWT. Subject is the username.
type Claims struct {
	jwt.StandardClaims
	Role account.Role `json:"role"`
	Kind string       `json:"typ"`
}

// TokenPair is the login / refresh response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type tokenIssuer struct {
	issuer     string
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newTokenIssuer(conf *core.Config) tokenIssuer {
	return tokenIssuer{
		issuer:     conf.AppName,
		secretKey:  []byte(conf.SecretKey),
		accessTTL:  conf.Server.AccessTokenExpirationDelta,
		refreshTTL: conf.Server.RefreshTokenExpirationDelta,
	}
}

func (ti tokenIssuer) claims(acc account.Account, kind string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    ti.issuer,
			Subject:   acc.Username,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: acc.Role,
		Kind: kind,
	}
}

// sign generates a signed JWT token string representing the Claims.
func (ti tokenIssuer) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(ti.secretKey)
	return ss, errors.Wrap(err, "signing token")
}

// pair issues an access and a refresh token for acc.
func (ti tokenIssuer) pair(acc account.Account) (TokenPair, error) {
	access, err := ti.sign(ti.claims(acc, tokenKindAccess, ti.accessTTL))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := ti.sign(ti.claims(acc, tokenKindRefresh, ti.refreshTTL))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// parse verifies the signature and expiry of a token of the given kind.
func (ti tokenIssuer) parse(tokenString, kind string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ti.secretKey, nil
	})
	if err != nil || !token.Valid || claims.Kind != kind || claims.Subject == "" {
		return nil, account.ErrInvalidToken
	}
	return claims, nil
}

// jwtMiddleware verifies bearer tokens and stores them in the context.
func (ti tokenIssuer) jwtMiddleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    ti.secretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
		AuthScheme:    "Bearer",
		ErrorHandler: func(err error) error {
			if err == middleware.ErrJWTMissing {
				return errNotAuthenticated
			}
			return account.ErrInvalidToken
		},
	})
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return claims, nil
		}
	}
	return nil, account.ErrInvalidToken
}

func getContextAccount(ctx echo.Context) (account.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acc, nil
	}
	return account.Account{}, errNotAuthenticated
}

// gate rejects requests whose access token does not resolve to a live account satisfying tier.
// It must run after jwtMiddleware.
func gate(svc *account.Service, tier account.Tier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.Kind != tokenKindAccess {
				return account.ErrInvalidToken
			}
			acc, err := svc.Authorize(ctx.Request().Context(), claims.Subject, tier)
			if err != nil {
				return err
			}
			ctx.Set(contextAccountKey, acc)
			return next(ctx)
		}
	}
}

// bearerToken returns the token of an `Authorization: Bearer` header, if any.
func bearerToken(req *http.Request) (string, bool) {
	auth := req.Header.Get(echo.HeaderAuthorization)
	const scheme = "Bearer "
	if len(auth) > len(scheme) && strings.EqualFold(auth[:len(scheme)], scheme) {
		return auth[len(scheme):], true
	}
	return "", false
}
