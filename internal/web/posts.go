package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"inkwell/internal/forms"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

func (app *App) home(w http.ResponseWriter, r *http.Request) {
	posts, err := app.Store.ListPosts(r.Context())
	if err != nil {
		app.serverError(w, err)
		return
	}

	app.render(w, r, http.StatusOK, "index.html", &templateData{
		Title: "Home",
		Posts: posts,
	})
}

func (app *App) postID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (app *App) newPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.render(w, r, http.StatusOK, "post_form.html", &templateData{
			Title: "New post",
			Form:  &forms.PostForm{Errors: forms.Errors{}},
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}
	form := forms.NewPost(r.PostForm)

	if !form.Valid() {
		app.render(w, r, http.StatusUnprocessableEntity, "post_form.html", &templateData{
			Title: "New post",
			Form:  form,
		})
		return
	}

	user := app.currentUser(r)
	post := &models.Post{
		Title:  form.Title,
		Body:   form.Body,
		UserID: user.ID,
	}
	if err := app.Store.CreatePost(r.Context(), post); err != nil {
		app.serverError(w, err)
		return
	}

	app.InfoLog.Printf("user %q created post %d", user.Username, post.ID)
	app.flash(r, "Your post has been published.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *App) showPost(w http.ResponseWriter, r *http.Request) {
	id, err := app.postID(r)
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

	views, err := app.Store.IncrementViews(r.Context(), id)
	if err != nil {
		app.serverError(w, err)
		return
	}
	post.Views = views

	app.render(w, r, http.StatusOK, "post.html", &templateData{
		Title: post.Title,
		Post:  post,
	})
}

// ownedPost loads the post and enforces the ownership check. A nil
// post means the response has already been written.
func (app *App) ownedPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := app.postID(r)
	if err != nil {
		app.notFound(w)
		return nil
	}

	post, err := app.Store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFound(w)
			return nil
		}
		app.serverError(w, err)
		return nil
	}

	if post.UserID != app.currentUser(r).ID {
		app.forbidden(w)
		return nil
	}
	return post
}

func (app *App) updatePost(w http.ResponseWriter, r *http.Request) {
	post := app.ownedPost(w, r)
	if post == nil {
		return
	}

	if r.Method != http.MethodPost {
		form := &forms.PostForm{
			Title:  post.Title,
			Body:   post.Body,
			Errors: forms.Errors{},
		}
		app.render(w, r, http.StatusOK, "post_form.html", &templateData{
			Title: "Edit post",
			Form:  form,
			Post:  post,
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}
	form := forms.NewPost(r.PostForm)

	if !form.Valid() {
		app.render(w, r, http.StatusUnprocessableEntity, "post_form.html", &templateData{
			Title: "Edit post",
			Form:  form,
			Post:  post,
		})
		return
	}

	post.Title = form.Title
	post.Body = form.Body
	if err := app.Store.UpdatePost(r.Context(), post); err != nil {
		app.serverError(w, err)
		return
	}

	app.flash(r, "Your post has been updated.")
	http.Redirect(w, r, "/post/"+strconv.FormatInt(post.ID, 10), http.StatusSeeOther)
}

func (app *App) deletePost(w http.ResponseWriter, r *http.Request) {
	post := app.ownedPost(w, r)
	if post == nil {
		return
	}

	if err := app.Store.DeletePost(r.Context(), post.ID); err != nil {
		app.serverError(w, err)
		return
	}

	app.flash(r, "Your post has been deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
