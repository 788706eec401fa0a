package models

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	Bio          string    `json:"bio"`
	GithubURL    string    `json:"github_url"`
	WebsiteURL   string    `json:"website_url"`
	AvatarHash   string    `json:"avatar_hash"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) PasswordMatches(input string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

// AvatarHash fingerprints an email address the way Gravatar-style
// services expect: hex md5 of the trimmed, lower-cased address.
func AvatarHash(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Views     int64     `json:"views"`
	UserID    int64     `json:"user_id"`

	// Author is populated on reads that join the owning user.
	Author *User `json:"author,omitempty"`
}
