package handlers

import (
	"net/http"

	"authdemo/models"
	"authdemo/utils"

	"github.com/cyclopcam/www"
	"go.uber.org/zap"
)

// RequireSession admits requests carrying a decodable session cookie and sends
// everything else back to the login page.
func (a *Auth) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := utils.ReadSession(r, a.Codec)
		if err != nil {
			a.Log.Debug("session rejected", zap.String("path", r.URL.Path), zap.Error(err))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(utils.WithIdentity(r.Context(), identity)))
	})
}

func (a *Auth) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.Pages.Render(w, http.StatusOK, "dashboard.html", models.DashboardPageData{
		User:     *identity,
		Initials: identity.Initials(),
	})
}

func (a *Auth) WhoAmIHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	www.SendJSON(w, identity)
}
