package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"inkwell/internal/models"
)

const userColumns = `id, username, email, password_hash, is_admin, bio, github_url, website_url, avatar_hash, registered_at`

func scanUser(row pgx.Row, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.Bio,
		&user.GithubURL,
		&user.WebsiteURL,
		&user.AvatarHash,
		&user.RegisteredAt,
	)
}

func (d *Database) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, email, password_hash, is_admin, bio, github_url, website_url, avatar_hash)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, registered_at`
	err := d.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.Bio,
		user.GithubURL,
		user.WebsiteURL,
		user.AvatarHash,
	).Scan(&user.ID, &user.RegisteredAt)
	if err != nil {
		return uniqueViolation(err)
	}
	return nil
}

func (d *Database) getUserWhere(ctx context.Context, clause string, arg any) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s`, userColumns, clause)
	err := scanUser(d.pool.QueryRow(ctx, query, arg), &user)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return d.getUserWhere(ctx, "id = $1", id)
}

func (d *Database) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.getUserWhere(ctx, "email = $1", email)
}

func (d *Database) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return d.getUserWhere(ctx, "username = $1", username)
}

func (d *Database) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users
	          SET username = $2, email = $3, password_hash = $4, is_admin = $5,
	              bio = $6, github_url = $7, website_url = $8, avatar_hash = $9
	          WHERE id = $1`
	tag, err := d.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.Bio,
		user.GithubURL,
		user.WebsiteURL,
		user.AvatarHash,
	)
	if err != nil {
		return uniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUserAndPosts removes the user's posts and then the user inside
// one transaction, so a failure cannot leave either half applied.
func (d *Database) DeleteUserAndPosts(ctx context.Context, id int64) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE user_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (d *Database) listUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (d *Database) ListUsers(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY id DESC`, userColumns)
	return d.listUsers(ctx, query)
}

func (d *Database) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY registered_at DESC LIMIT $1`, userColumns)
	return d.listUsers(ctx, query, limit)
}

func (d *Database) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := d.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (d *Database) PostAuthors(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users
	          WHERE id IN (SELECT DISTINCT user_id FROM posts)
	          ORDER BY username`, userColumns)
	return d.listUsers(ctx, query)
}
