package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/store"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const sessionKeyUserID = "userID"

// App carries everything the handlers need: the store, the session
// manager, the parsed templates and the paired loggers.
type App struct {
	InfoLog  *log.Logger
	ErrorLog *log.Logger
	Store    store.Store
	Sessions *scs.SessionManager
	Location *time.Location

	templates map[string]*template.Template
}

func NewApp(infoLog, errorLog *log.Logger, st store.Store, loc *time.Location, sessionLifetime time.Duration) (*App, error) {
	sessions := scs.New()
	sessions.Lifetime = sessionLifetime
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	// Session cookies expire with the browser unless the user ticks
	// "remember me", which flips this per session via RememberMe.
	sessions.Cookie.Persist = false

	app := &App{
		InfoLog:  infoLog,
		ErrorLog: errorLog,
		Store:    st,
		Sessions: sessions,
		Location: loc,
	}

	templates, err := parseTemplates(app.templateFuncs())
	if err != nil {
		return nil, err
	}
	app.templates = templates

	return app, nil
}

func (app *App) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": render.Markdown,
		"localtime": func(t time.Time) string {
			return render.LocalTime(t, app.Location)
		},
		"avatar": func(user *models.User, size int) string {
			if user == nil || user.AvatarHash == "" {
				return ""
			}
			return "https://www.gravatar.com/avatar/" + user.AvatarHash + "?d=identicon&s=" + strconv.Itoa(size)
		},
		"excerpt": excerpt,
	}
}

// Each page is parsed together with the base layout, keyed by its path
// relative to templates/pages.
func parseTemplates(funcs template.FuncMap) (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	for _, pattern := range []string{"templates/pages/*.html", "templates/pages/admin/*.html"} {
		pages, err := fs.Glob(templateFS, pattern)
		if err != nil {
			return nil, err
		}
		for _, page := range pages {
			name := strings.TrimPrefix(page, "templates/pages/")
			ts, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, "templates/base.html", page)
			if err != nil {
				return nil, err
			}
			cache[name] = ts
		}
	}

	return cache, nil
}

func excerpt(body string) string {
	const limit = 280
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "…"
}
