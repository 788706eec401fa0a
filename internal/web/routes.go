package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes wires every handler behind the session middleware. The whole
// router is wrapped in LoadAndSave so flash messages and the signed-in
// user are available everywhere.
func (app *App) Routes() http.Handler {
	r := mux.NewRouter()

	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS)))

	r.HandleFunc("/", app.home).Methods(http.MethodGet)
	r.HandleFunc("/register", app.register).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/login", app.login).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", app.logout).Methods(http.MethodGet)

	r.HandleFunc("/post/new", app.requireLogin(app.newPost)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/post/{id:[0-9]+}", app.showPost).Methods(http.MethodGet)
	r.HandleFunc("/post/{id:[0-9]+}/update", app.requireLogin(app.updatePost)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/post/{id:[0-9]+}/delete", app.requireLogin(app.deletePost)).Methods(http.MethodPost)

	r.HandleFunc("/profile", app.requireLogin(app.profile)).Methods(http.MethodGet)
	r.HandleFunc("/change-password", app.requireLogin(app.changePassword)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/edit-profile", app.requireLogin(app.editProfile)).Methods(http.MethodGet, http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/dashboard", app.requireLogin(app.requireAdmin(app.adminDashboard))).Methods(http.MethodGet)
	admin.HandleFunc("/users", app.requireLogin(app.requireAdmin(app.adminUserList))).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id:[0-9]+}", app.requireLogin(app.requireAdmin(app.adminUserDetail))).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id:[0-9]+}/edit", app.requireLogin(app.requireAdmin(app.adminEditUser))).Methods(http.MethodGet, http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}/delete", app.requireLogin(app.requireAdmin(app.adminDeleteUser))).Methods(http.MethodPost)
	admin.HandleFunc("/posts", app.requireLogin(app.requireAdmin(app.adminPostList))).Methods(http.MethodGet)
	admin.HandleFunc("/posts/{id:[0-9]+}/delete", app.requireLogin(app.requireAdmin(app.adminDeletePost))).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		app.notFound(w)
	})

	return app.logRequest(app.Sessions.LoadAndSave(r))
}
