package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/julienschmidt/httprouter"
)

// Routes wires the auth endpoints. loginPerMinute caps form posts per client
// address, keyed the same way as the account limiter; zero turns the cap off.
func (a *Auth) Routes(loginPerMinute int) http.Handler {
	router := httprouter.New()

	var login http.Handler = http.HandlerFunc(a.LoginHandler)
	if loginPerMinute > 0 {
		login = httprate.Limit(loginPerMinute, time.Minute,
			httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
				return a.clientIP(r), nil
			}),
		)(login)
	}

	router.HandlerFunc(http.MethodGet, "/", a.LoginPageHandler)
	router.Handler(http.MethodPost, "/", login)
	router.Handler(http.MethodGet, "/dashboard", a.RequireSession(http.HandlerFunc(a.DashboardHandler)))
	router.Handler(http.MethodGet, "/api/me", a.RequireSession(http.HandlerFunc(a.WhoAmIHandler)))
	router.HandlerFunc(http.MethodPost, "/api/logout", a.LogOutHandler)

	return router
}
