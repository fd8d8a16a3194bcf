package utils

import (
	"net/http"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/basicauth"
)

// BasicAuth guards the admin surface with the static credential pair from
// config. Guests never pass through here; their reservations are addressed
// by bearer token instead.
func BasicAuth(username, password string) iris.Handler {
	return basicauth.New(basicauth.Options{
		Realm: "Admin Area",
		Allow: basicauth.AllowUsers(map[string]string{username: password}),
		ErrorHandler: func(ctx iris.Context, err error) {
			ctx.ResponseWriter().Header().Set("WWW-Authenticate", `Basic realm="Admin Area"`)
			JSONError(ctx, http.StatusUnauthorized, "unauthorized", "authentication required")
		},
	})
}
