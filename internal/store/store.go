package store

import (
	"context"
	"errors"

	"inkwell/internal/models"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrDuplicateUsername = errors.New("store: username already taken")
	ErrDuplicateEmail    = errors.New("store: email already registered")
)

// Store is the persistence surface the web and CLI layers depend on.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUserAndPosts removes the user and every post they own in a
	// single transaction.
	DeleteUserAndPosts(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]models.User, error)
	RecentUsers(ctx context.Context, limit int) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id int64) error
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListPostsByUser(ctx context.Context, userID int64) ([]models.Post, error)
	RecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	// IncrementViews bumps the view counter atomically and returns the
	// new value.
	IncrementViews(ctx context.Context, id int64) (int64, error)
	CountPosts(ctx context.Context) (int64, error)
	SumViews(ctx context.Context) (int64, error)
	SumViewsByUser(ctx context.Context, userID int64) (int64, error)
	// PostAuthors lists the distinct users who have written at least
	// one post.
	PostAuthors(ctx context.Context) ([]models.User, error)
}
