package web

import (
	"errors"
	"fmt"
	"net/http"

	"inkwell/internal/forms"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

func (app *App) register(w http.ResponseWriter, r *http.Request) {
	if app.currentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodPost {
		app.render(w, r, http.StatusOK, "register.html", &templateData{
			Title: "Register",
			Form:  &forms.RegisterForm{Errors: forms.Errors{}},
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}
	form := forms.NewRegister(r.PostForm)

	if form.Valid() {
		// Field-level uniqueness checks, mirrored by the unique
		// constraints in the schema.
		if _, err := app.Store.GetUserByUsername(r.Context(), form.Username); err == nil {
			form.Errors.Add("username", "That username is already taken.")
		} else if !errors.Is(err, store.ErrNotFound) {
			app.serverError(w, err)
			return
		}
		if _, err := app.Store.GetUserByEmail(r.Context(), form.Email); err == nil {
			form.Errors.Add("email", "That email is already registered.")
		} else if !errors.Is(err, store.ErrNotFound) {
			app.serverError(w, err)
			return
		}
	}

	if len(form.Errors) > 0 {
		app.render(w, r, http.StatusUnprocessableEntity, "register.html", &templateData{
			Title: "Register",
			Form:  form,
		})
		return
	}

	user := &models.User{
		Username:   form.Username,
		Email:      form.Email,
		AvatarHash: models.AvatarHash(form.Email),
	}
	if err := user.SetPassword(form.Password); err != nil {
		app.serverError(w, err)
		return
	}

	err := app.Store.CreateUser(r.Context(), user)
	if err != nil {
		// A concurrent registration can still hit the constraint
		// between the check and the insert.
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			form.Errors.Add("username", "That username is already taken.")
		case errors.Is(err, store.ErrDuplicateEmail):
			form.Errors.Add("email", "That email is already registered.")
		default:
			app.serverError(w, err)
			return
		}
		app.render(w, r, http.StatusUnprocessableEntity, "register.html", &templateData{
			Title: "Register",
			Form:  form,
		})
		return
	}

	app.InfoLog.Printf("registered user %q (id %d)", user.Username, user.ID)
	app.flash(r, "Account created. You can log in now.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (app *App) login(w http.ResponseWriter, r *http.Request) {
	if app.currentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	next := safeNext(r.URL.Query().Get("next"))

	if r.Method != http.MethodPost {
		app.render(w, r, http.StatusOK, "login.html", &templateData{
			Title: "Log in",
			Form:  &forms.LoginForm{Errors: forms.Errors{}},
			Next:  next,
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}
	form := forms.NewLogin(r.PostForm)
	next = safeNext(r.PostForm.Get("next"))

	if form.Valid() {
		user, err := app.Store.GetUserByEmail(r.Context(), form.Email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			app.serverError(w, err)
			return
		}

		matched := false
		if user != nil {
			matched, err = user.PasswordMatches(form.Password)
			if err != nil {
				app.serverError(w, err)
				return
			}
		}

		if matched {
			// Accounts that predate the avatar column get their
			// fingerprint filled in on first login.
			if user.AvatarHash == "" {
				user.AvatarHash = models.AvatarHash(user.Email)
				if err := app.Store.UpdateUser(r.Context(), user); err != nil {
					app.ErrorLog.Printf("backfilling avatar hash for user %d: %v", user.ID, err)
				}
			}

			if err := app.Sessions.RenewToken(r.Context()); err != nil {
				app.serverError(w, err)
				return
			}
			app.Sessions.Put(r.Context(), sessionKeyUserID, user.ID)
			app.Sessions.RememberMe(r.Context(), form.Remember)

			app.InfoLog.Printf("user %q logged in", user.Username)
			app.flash(r, fmt.Sprintf("Welcome back, %s.", user.Username))

			if next != "" {
				http.Redirect(w, r, next, http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		// One message for unknown email and wrong password alike, so
		// the form cannot be used to enumerate accounts.
		form.Errors.Add("form", "Login failed. Check your email and password.")
	}

	app.render(w, r, http.StatusUnprocessableEntity, "login.html", &templateData{
		Title: "Log in",
		Form:  form,
		Next:  next,
	})
}

func (app *App) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.Sessions.Destroy(r.Context()); err != nil {
		app.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *App) profile(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	posts, err := app.Store.ListPostsByUser(r.Context(), user.ID)
	if err != nil {
		app.serverError(w, err)
		return
	}

	app.render(w, r, http.StatusOK, "profile.html", &templateData{
		Title: "Profile",
		User:  user,
		Posts: posts,
	})
}

func (app *App) changePassword(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	if r.Method != http.MethodPost {
		app.render(w, r, http.StatusOK, "change_password.html", &templateData{
			Title: "Change password",
			Form:  &forms.ChangePasswordForm{Errors: forms.Errors{}},
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}
	form := forms.NewChangePassword(r.PostForm)

	if form.Valid() {
		matched, err := user.PasswordMatches(form.CurrentPassword)
		if err != nil {
			app.serverError(w, err)
			return
		}
		if !matched {
			form.Errors.Add("current_password", "Current password is incorrect.")
		}
	}

	if len(form.Errors) > 0 {
		app.render(w, r, http.StatusUnprocessableEntity, "change_password.html", &templateData{
			Title: "Change password",
			Form:  form,
		})
		return
	}

	if err := user.SetPassword(form.NewPassword); err != nil {
		app.serverError(w, err)
		return
	}
	if err := app.Store.UpdateUser(r.Context(), user); err != nil {
		app.serverError(w, err)
		return
	}

	app.flash(r, "Your password has been changed.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (app *App) editProfile(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)

	if r.Method != http.MethodPost {
		form := &forms.EditProfileForm{
			Bio:        user.Bio,
			GithubURL:  user.GithubURL,
			WebsiteURL: user.WebsiteURL,
			Errors:     forms.Errors{},
		}
		app.render(w, r, http.StatusOK, "edit_profile.html", &templateData{
			Title: "Edit profile",
			Form:  form,
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}
	form := forms.NewEditProfile(r.PostForm)

	if !form.Valid() {
		app.render(w, r, http.StatusUnprocessableEntity, "edit_profile.html", &templateData{
			Title: "Edit profile",
			Form:  form,
		})
		return
	}

	user.Bio = form.Bio
	user.GithubURL = form.GithubURL
	user.WebsiteURL = form.WebsiteURL
	if err := app.Store.UpdateUser(r.Context(), user); err != nil {
		app.serverError(w, err)
		return
	}

	app.flash(r, "Your profile has been updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
