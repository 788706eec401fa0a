// Package forms holds the declarative form definitions for every page
// that accepts input, plus the translation of validator failures into
// per-field messages the templates can render inline.
package forms

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the form field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Errors maps a form field name to its first validation message. The
// pseudo-field "form" carries messages that belong to no single field,
// such as the generic login failure.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e Errors) Get(field string) string {
	return e[field]
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long.", fe.Param())
	case "eqfield":
		return "The two entries must match."
	}
	return "Invalid value."
}

// check runs the validator over a form struct and folds every field
// error into errs.
func check(form any, errs Errors) {
	err := validate.Struct(form)
	if err == nil {
		return
	}
	for _, fe := range err.(validator.ValidationErrors) {
		errs.Add(fe.Field(), message(fe))
	}
}

type RegisterForm struct {
	Username        string `form:"username" validate:"required,min=2,max=20"`
	Email           string `form:"email" validate:"required,email,max=120"`
	Password        string `form:"password" validate:"required,min=6,max=128"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`

	Errors Errors `form:"-"`
}

func NewRegister(values url.Values) *RegisterForm {
	return &RegisterForm{
		Username:        strings.TrimSpace(values.Get("username")),
		Email:           strings.TrimSpace(values.Get("email")),
		Password:        values.Get("password"),
		ConfirmPassword: values.Get("confirm_password"),
		Errors:          Errors{},
	}
}

func (f *RegisterForm) Valid() bool {
	check(f, f.Errors)
	return len(f.Errors) == 0
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Remember bool   `form:"-"`

	Errors Errors `form:"-"`
}

func NewLogin(values url.Values) *LoginForm {
	return &LoginForm{
		Email:    strings.TrimSpace(values.Get("email")),
		Password: values.Get("password"),
		Remember: values.Get("remember") != "",
		Errors:   Errors{},
	}
}

func (f *LoginForm) Valid() bool {
	check(f, f.Errors)
	return len(f.Errors) == 0
}

type PostForm struct {
	Title string `form:"title" validate:"required,max=100"`
	Body  string `form:"body" validate:"required"`

	Errors Errors `form:"-"`
}

func NewPost(values url.Values) *PostForm {
	return &PostForm{
		Title:  strings.TrimSpace(values.Get("title")),
		Body:   values.Get("body"),
		Errors: Errors{},
	}
}

func (f *PostForm) Valid() bool {
	check(f, f.Errors)
	return len(f.Errors) == 0
}

type ChangePasswordForm struct {
	CurrentPassword string `form:"current_password" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required,min=6,max=128"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`

	Errors Errors `form:"-"`
}

func NewChangePassword(values url.Values) *ChangePasswordForm {
	return &ChangePasswordForm{
		CurrentPassword: values.Get("current_password"),
		NewPassword:     values.Get("new_password"),
		ConfirmPassword: values.Get("confirm_password"),
		Errors:          Errors{},
	}
}

func (f *ChangePasswordForm) Valid() bool {
	check(f, f.Errors)
	return len(f.Errors) == 0
}

// EditProfileForm mirrors the public profile editor: everything is
// optional, only the website has to parse as a URL.
type EditProfileForm struct {
	Bio        string `form:"bio" validate:"omitempty,max=200"`
	GithubURL  string `form:"github_url" validate:"omitempty,max=255"`
	WebsiteURL string `form:"website_url" validate:"omitempty,url,max=255"`

	Errors Errors `form:"-"`
}

func NewEditProfile(values url.Values) *EditProfileForm {
	return &EditProfileForm{
		Bio:        strings.TrimSpace(values.Get("bio")),
		GithubURL:  strings.TrimSpace(values.Get("github_url")),
		WebsiteURL: strings.TrimSpace(values.Get("website_url")),
		Errors:     Errors{},
	}
}

func (f *EditProfileForm) Valid() bool {
	check(f, f.Errors)
	return len(f.Errors) == 0
}

// AdminEditUserForm is the back-office user editor. A blank password
// leaves the stored credential untouched.
type AdminEditUserForm struct {
	Username   string `form:"username" validate:"required,min=2,max=20"`
	Email      string `form:"email" validate:"required,email,max=120"`
	Bio        string `form:"bio" validate:"omitempty,max=200"`
	GithubURL  string `form:"github_url" validate:"omitempty,max=255"`
	WebsiteURL string `form:"website_url" validate:"omitempty,url,max=255"`
	Password   string `form:"password" validate:"omitempty,min=6,max=128"`
	IsAdmin    bool   `form:"-"`

	Errors Errors `form:"-"`
}

func NewAdminEditUser(values url.Values) *AdminEditUserForm {
	return &AdminEditUserForm{
		Username:   strings.TrimSpace(values.Get("username")),
		Email:      strings.TrimSpace(values.Get("email")),
		Bio:        strings.TrimSpace(values.Get("bio")),
		GithubURL:  strings.TrimSpace(values.Get("github_url")),
		WebsiteURL: strings.TrimSpace(values.Get("website_url")),
		Password:   values.Get("password"),
		IsAdmin:    values.Get("is_admin") != "",
		Errors:     Errors{},
	}
}

func (f *AdminEditUserForm) Valid() bool {
	check(f, f.Errors)
	return len(f.Errors) == 0
}
