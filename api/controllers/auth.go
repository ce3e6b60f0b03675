package controllers

import (
	"net/http"
	"time"

	"github.com/shopyardhq/shopyard-backend/api/responses"
	"github.com/shopyardhq/shopyard-backend/api/validators"
	"github.com/shopyardhq/shopyard-backend/internal/accounts"
	pkgauth "github.com/shopyardhq/shopyard-backend/pkg/auth"
	"github.com/shopyardhq/shopyard-backend/pkg/config"
	pkgerrors "github.com/shopyardhq/shopyard-backend/pkg/errors"
	"github.com/shopyardhq/shopyard-backend/pkg/logger"
	"github.com/shopyardhq/shopyard-backend/pkg/models"
)

type registerPayload struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	FullName string `json:"full_name" validate:"max=128"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// AuthRegister creates an account and returns a session token for it.
func AuthRegister(svc accounts.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var payload registerPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		account, err := svc.Register(ctx, accounts.RegisterInput{
			Username: payload.Username,
			FullName: payload.FullName,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token, err := mintToken(jwtCfg, account)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, authResponse{
			Token:    token,
			Username: account.Username,
			FullName: account.FullName,
			IsAdmin:  account.IsAdmin,
		})
	}
}

// AuthLogin verifies credentials and returns a session token.
func AuthLogin(svc accounts.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var payload loginPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		account, err := svc.Authenticate(ctx, payload.Username, payload.Password)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token, err := mintToken(jwtCfg, account)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, authResponse{
			Token:    token,
			Username: account.Username,
			FullName: account.FullName,
			IsAdmin:  account.IsAdmin,
		})
	}
}

func mintToken(jwtCfg config.JWTConfig, account models.Account) (string, error) {
	token, err := pkgauth.MintAccessToken(jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
		Username: account.Username,
		IsAdmin:  account.IsAdmin,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return token, nil
}
