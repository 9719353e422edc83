package httpapi

import (
	"strings"

	"github.com/kataras/iris/v12"
)

// accountIDKey names the per-request value set by requireAuth.
const accountIDKey = "accountID"

// requireAuth gates a route on a valid bearer token. A missing token is a
// 401; a token that fails verification is a 403.
func (a *API) requireAuth(ctx iris.Context) {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		JSONError(ctx, iris.StatusUnauthorized, "unauthorized", "no token provided")
		return
	}

	token := header
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 {
		token = parts[1]
	}

	accountID, err := a.svc.VerifyToken(token)
	if err != nil {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "invalid or expired token")
		return
	}

	ctx.Values().Set(accountIDKey, accountID)
	ctx.Next()
}
