package api

import (
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/mvisser/crimemap/internal/pkg/constants"
	"github.com/mvisser/crimemap/internal/pkg/utils"
)

// AdminMiddleware guards mutating endpoints behind the admin token cookie.
func (svc *APIService) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(constants.CookieKeySecretToken)
		if err != nil {
			return constants.ErrUnauthorized
		}

		token, err := utils.ParseAuthToken(cookie.Value)
		if err != nil {
			return err
		}

		if token.Secret != viper.GetString(constants.ViperSecretKey) {
			return constants.ErrUnauthorized
		}

		return next(ctx)
	}
}
