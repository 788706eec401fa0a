package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"inkwell/internal/forms"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

func (app *App) adminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userCount, err := app.Store.CountUsers(ctx)
	if err != nil {
		app.serverError(w, err)
		return
	}
	postCount, err := app.Store.CountPosts(ctx)
	if err != nil {
		app.serverError(w, err)
		return
	}
	totalViews, err := app.Store.SumViews(ctx)
	if err != nil {
		app.serverError(w, err)
		return
	}
	users, err := app.Store.RecentUsers(ctx, 5)
	if err != nil {
		app.serverError(w, err)
		return
	}
	posts, err := app.Store.RecentPosts(ctx, 5)
	if err != nil {
		app.serverError(w, err)
		return
	}

	app.render(w, r, http.StatusOK, "admin/dashboard.html", &templateData{
		Title:      "Dashboard",
		ActivePage: "dashboard",
		Stats: &dashboardStats{
			UserCount:  userCount,
			PostCount:  postCount,
			TotalViews: totalViews,
		},
		Users: users,
		Posts: posts,
	})
}

func (app *App) adminUserList(w http.ResponseWriter, r *http.Request) {
	users, err := app.Store.ListUsers(r.Context())
	if err != nil {
		app.serverError(w, err)
		return
	}

	app.render(w, r, http.StatusOK, "admin/users.html", &templateData{
		Title:      "Users",
		ActivePage: "users",
		Users:      users,
	})
}

func (app *App) adminUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		app.notFound(w)
		return nil, false
	}
	user, err := app.Store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFound(w)
			return nil, false
		}
		app.serverError(w, err)
		return nil, false
	}
	return user, true
}

func (app *App) adminUserDetail(w http.ResponseWriter, r *http.Request) {
	user, ok := app.adminUser(w, r)
	if !ok {
		return
	}

	views, err := app.Store.SumViewsByUser(r.Context(), user.ID)
	if err != nil {
		app.serverError(w, err)
		return
	}
	posts, err := app.Store.ListPostsByUser(r.Context(), user.ID)
	if err != nil {
		app.serverError(w, err)
		return
	}

	app.render(w, r, http.StatusOK, "admin/user_detail.html", &templateData{
		Title:      "User " + user.Username,
		ActivePage: "users",
		User:       user,
		Posts:      posts,
		UserViews:  views,
	})
}

func (app *App) adminEditUser(w http.ResponseWriter, r *http.Request) {
	user, ok := app.adminUser(w, r)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		form := &forms.AdminEditUserForm{
			Username:   user.Username,
			Email:      user.Email,
			Bio:        user.Bio,
			GithubURL:  user.GithubURL,
			WebsiteURL: user.WebsiteURL,
			IsAdmin:    user.IsAdmin,
			Errors:     forms.Errors{},
		}
		app.render(w, r, http.StatusOK, "admin/user_edit.html", &templateData{
			Title:      "Edit " + user.Username,
			ActivePage: "users",
			User:       user,
			Form:       form,
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}
	form := forms.NewAdminEditUser(r.PostForm)

	if form.Valid() {
		// Uniqueness only matters when the value actually changed.
		if form.Username != user.Username {
			if _, err := app.Store.GetUserByUsername(r.Context(), form.Username); err == nil {
				form.Errors.Add("username", "That username is already taken.")
			} else if !errors.Is(err, store.ErrNotFound) {
				app.serverError(w, err)
				return
			}
		}
		if form.Email != user.Email {
			if _, err := app.Store.GetUserByEmail(r.Context(), form.Email); err == nil {
				form.Errors.Add("email", "That email is already registered.")
			} else if !errors.Is(err, store.ErrNotFound) {
				app.serverError(w, err)
				return
			}
		}
	}

	if len(form.Errors) > 0 {
		app.render(w, r, http.StatusUnprocessableEntity, "admin/user_edit.html", &templateData{
			Title:      "Edit " + user.Username,
			ActivePage: "users",
			User:       user,
			Form:       form,
		})
		return
	}

	if form.Email != user.Email {
		user.AvatarHash = models.AvatarHash(form.Email)
	}
	user.Username = form.Username
	user.Email = form.Email
	user.Bio = form.Bio
	user.GithubURL = form.GithubURL
	user.WebsiteURL = form.WebsiteURL
	user.IsAdmin = form.IsAdmin
	if form.Password != "" {
		if err := user.SetPassword(form.Password); err != nil {
			app.serverError(w, err)
			return
		}
	}

	if err := app.Store.UpdateUser(r.Context(), user); err != nil {
		app.serverError(w, err)
		return
	}

	app.flash(r, fmt.Sprintf("User %q has been updated.", user.Username))
	http.Redirect(w, r, "/admin/users/"+strconv.FormatInt(user.ID, 10), http.StatusSeeOther)
}

func (app *App) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := app.adminUser(w, r)
	if !ok {
		return
	}

	// An admin cannot remove the account they are signed in with.
	if user.ID == app.currentUser(r).ID {
		app.flash(r, "You cannot delete the account you are signed in with.")
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}

	if err := app.Store.DeleteUserAndPosts(r.Context(), user.ID); err != nil {
		app.serverError(w, err)
		return
	}

	app.InfoLog.Printf("admin deleted user %q (id %d)", user.Username, user.ID)
	app.flash(r, fmt.Sprintf("User %q has been deleted.", user.Username))
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (app *App) adminPostList(w http.ResponseWriter, r *http.Request) {
	posts, err := app.Store.ListPosts(r.Context())
	if err != nil {
		app.serverError(w, err)
		return
	}
	authors, err := app.Store.PostAuthors(r.Context())
	if err != nil {
		app.serverError(w, err)
		return
	}

	app.render(w, r, http.StatusOK, "admin/posts.html", &templateData{
		Title:      "Posts",
		ActivePage: "posts",
		Posts:      posts,
		Authors:    authors,
	})
}

func (app *App) adminDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		app.notFound(w)
		return
	}

	post, err := app.Store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFound(w)
			return
		}
		app.serverError(w, err)
		return
	}

	if err := app.Store.DeletePost(r.Context(), post.ID); err != nil {
		app.serverError(w, err)
		return
	}

	app.flash(r, fmt.Sprintf("Post %q has been deleted.", post.Title))
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}
