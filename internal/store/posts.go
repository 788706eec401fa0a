package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"inkwell/internal/models"
)

const postColumns = `p.id, p.title, p.body, p.created_at, p.views, p.user_id,
	u.id, u.username, u.avatar_hash, u.is_admin`

func scanPost(row pgx.Row, post *models.Post) error {
	var author models.User
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.CreatedAt,
		&post.Views,
		&post.UserID,
		&author.ID,
		&author.Username,
		&author.AvatarHash,
		&author.IsAdmin,
	)
	if err != nil {
		return err
	}
	post.Author = &author
	return nil
}

func (d *Database) CreatePost(ctx context.Context, post *models.Post) error {
	query := `INSERT INTO posts (title, body, user_id) VALUES ($1, $2, $3) RETURNING id, created_at`
	return d.pool.QueryRow(ctx, query, post.Title, post.Body, post.UserID).Scan(&post.ID, &post.CreatedAt)
}

func (d *Database) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	query := `SELECT ` + postColumns + ` FROM posts p JOIN users u ON u.id = p.user_id WHERE p.id = $1`
	err := scanPost(d.pool.QueryRow(ctx, query, id), &post)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (d *Database) UpdatePost(ctx context.Context, post *models.Post) error {
	tag, err := d.pool.Exec(ctx, `UPDATE posts SET title = $2, body = $3 WHERE id = $1`,
		post.ID, post.Title, post.Body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) DeletePost(ctx context.Context, id int64) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) listPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := scanPost(rows, &post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (d *Database) ListPosts(ctx context.Context) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p JOIN users u ON u.id = p.user_id ORDER BY p.created_at DESC`
	return d.listPosts(ctx, query)
}

func (d *Database) ListPostsByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p JOIN users u ON u.id = p.user_id
	          WHERE p.user_id = $1 ORDER BY p.created_at DESC`
	return d.listPosts(ctx, query, userID)
}

func (d *Database) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p JOIN users u ON u.id = p.user_id
	          ORDER BY p.created_at DESC LIMIT $1`
	return d.listPosts(ctx, query, limit)
}

// IncrementViews is a single UPDATE so concurrent readers cannot lose
// counts to a read-modify-write race.
func (d *Database) IncrementViews(ctx context.Context, id int64) (int64, error) {
	var views int64
	err := d.pool.QueryRow(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING views`, id).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return views, nil
}

func (d *Database) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := d.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

func (d *Database) SumViews(ctx context.Context) (int64, error) {
	var total int64
	err := d.pool.QueryRow(ctx, `SELECT COALESCE(SUM(views), 0) FROM posts`).Scan(&total)
	return total, err
}

func (d *Database) SumViewsByUser(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := d.pool.QueryRow(ctx, `SELECT COALESCE(SUM(views), 0) FROM posts WHERE user_id = $1`, userID).Scan(&total)
	return total, err
}
