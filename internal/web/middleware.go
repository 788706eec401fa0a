package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

func (app *App) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		app.InfoLog.Printf("%s %s %s %s", requestID, r.RemoteAddr, r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

// requireLogin redirects anonymous requests to the login page,
// carrying the originally requested path for the post-login redirect.
func (app *App) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		if app.currentUser(r) == nil {
			target := "/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// requireAdmin refuses with a 403, never a redirect. It runs behind
// requireLogin, so the caller is known to be authenticated.
func (app *App) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := app.currentUser(r)
		if user == nil || !user.IsAdmin {
			app.forbidden(w)
			return
		}
		next(w, r)
	}
}

// safeNext accepts only local paths as post-login redirect targets.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return ""
}
