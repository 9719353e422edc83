package httpapi

import (
	"errors"

	"github.com/kataras/iris/v12"

	"propvest/account"
)

// JSONError writes the uniform error envelope used by every handler.
func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognized is
// logged and reported as a generic 500 so internals never leak to clients.
func (a *API) writeError(ctx iris.Context, err error) {
	var verr *account.ValidationError
	switch {
	case errors.As(err, &verr):
		JSONError(ctx, iris.StatusBadRequest, "validation_error", verr.Msg)
	case errors.Is(err, account.ErrDuplicateEmail):
		JSONError(ctx, iris.StatusBadRequest, "email_in_use", "an account with this email already exists")
	case errors.Is(err, account.ErrInvalidCode):
		JSONError(ctx, iris.StatusBadRequest, "invalid_code", "invalid verification code")
	case errors.Is(err, account.ErrNotFound):
		JSONError(ctx, iris.StatusNotFound, "not_found", "account not found")
	case errors.Is(err, account.ErrNotVerified):
		JSONError(ctx, iris.StatusForbidden, "not_verified", "email is not verified")
	case errors.Is(err, account.ErrInvalidCredentials):
		JSONError(ctx, iris.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	default:
		a.logger.Error("request failed", "path", ctx.Path(), "error", err)
		JSONError(ctx, iris.StatusInternalServerError, "server_error", "something went wrong")
	}
}
