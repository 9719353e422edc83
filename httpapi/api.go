// Package httpapi exposes the account lifecycle over HTTP. Route paths and
// payload field names are fixed by existing clients; the investor and
// developer variants of each operation share one handler backed by the
// kind-parameterized account service.
package httpapi

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"

	"propvest/account"
)

// AssetStore persists uploaded files and returns an opaque key.
type AssetStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// API wires the account service and asset store into HTTP handlers.
type API struct {
	svc    *account.Service
	assets AssetStore
	logger *slog.Logger
}

// New creates the HTTP API.
func New(svc *account.Service, assets AssetStore, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{svc: svc, assets: assets, logger: logger}
}

// Router builds the Iris application with all routes registered.
func (a *API) Router() *iris.Application {
	app := iris.New()
	app.Validator = validator.New()

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	api := app.Party("/api")
	{
		api.Post("/sign-up", a.registerInvestor)
		api.Post("/login", a.login)
		api.Post("/verification", a.verify)
		api.Post("/resend-code", a.resendCode)
		api.Post("/reset-password", a.requestPasswordReset)
		api.Post("/new-password", a.completePasswordReset)

		api.Post("/register-property-developer", a.registerDeveloper)
		api.Post("/login-developer", a.login)
		api.Post("/developer-verification", a.verify)
		api.Post("/reset-developer-password", a.requestPasswordReset)
		api.Post("/reset-new-password", a.completePasswordReset)

		api.Get("/investor-profile/{id}", a.investorProfile)
		api.Post("/profile-image", a.requireAuth, a.uploadProfileImage)
		api.Get("/protected-route", a.requireAuth, a.protectedProbe)
	}

	return app
}
