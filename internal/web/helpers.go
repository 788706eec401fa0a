package web

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime/debug"

	"inkwell/internal/models"
)

// templateData is the view model every page template receives.
type templateData struct {
	Title       string
	ActivePage  string
	CurrentUser *models.User
	Flash       string
	Form        any
	Next        string

	Post        *models.Post
	Posts       []models.Post
	RecentPosts []models.Post

	User      *models.User
	Users     []models.User
	Authors   []models.User
	UserViews int64

	Stats *dashboardStats
}

type dashboardStats struct {
	UserCount  int64
	PostCount  int64
	TotalViews int64
}

func (app *App) render(w http.ResponseWriter, r *http.Request, status int, page string, data *templateData) {
	if data == nil {
		data = &templateData{}
	}
	if data.CurrentUser == nil {
		data.CurrentUser = app.currentUser(r)
	}
	data.Flash = app.Sessions.PopString(r.Context(), "flash")

	// The latest posts show up in the sidebar on every page.
	recent, err := app.Store.RecentPosts(r.Context(), 5)
	if err != nil {
		app.ErrorLog.Printf("loading recent posts: %v", err)
	} else {
		data.RecentPosts = recent
	}

	ts, ok := app.templates[page]
	if !ok {
		app.serverError(w, fmt.Errorf("no such template %q", page))
		return
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		app.serverError(w, err)
		return
	}

	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (app *App) flash(r *http.Request, message string) {
	app.Sessions.Put(r.Context(), "flash", message)
}

// currentUser resolves the session's user id against the store; any
// failure reads as "not signed in".
func (app *App) currentUser(r *http.Request) *models.User {
	id := app.Sessions.GetInt64(r.Context(), sessionKeyUserID)
	if id == 0 {
		return nil
	}
	user, err := app.Store.GetUser(r.Context(), id)
	if err != nil {
		return nil
	}
	return user
}

func (app *App) serverError(w http.ResponseWriter, err error) {
	app.ErrorLog.Printf("%s\n%s", err.Error(), debug.Stack())
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (app *App) clientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

func (app *App) notFound(w http.ResponseWriter) {
	app.clientError(w, http.StatusNotFound)
}

func (app *App) forbidden(w http.ResponseWriter) {
	app.clientError(w, http.StatusForbidden)
}
