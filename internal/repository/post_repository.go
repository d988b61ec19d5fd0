package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"skillswap/backend/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.CommunityPost) error
	FindByID(ctx context.Context, id uint64) (*models.CommunityPost, error)
	Update(ctx context.Context, id uint64, body, imageURL string) error
	Delete(ctx context.Context, id uint64) error
	ListFeed(ctx context.Context, limit, offset int32) ([]*models.CommunityPost, error)
	AddLike(ctx context.Context, id uint64) error
	AddUpvote(ctx context.Context, id uint64) error
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID uint64) ([]models.Comment, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.CommunityPost) error {
	query := `
		INSERT INTO community_posts (author_id, body, image_url, likes, upvotes, comments, created_at, updated_at)
		VALUES (?, ?, ?, 0, 0, 0, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query, post.AuthorID, post.Body, post.ImageURL, time.Now(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get post id: %w", err)
	}
	post.ID = uint64(id)

	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id uint64) (*models.CommunityPost, error) {
	query := `
		SELECT id, author_id, body, image_url, likes, upvotes, comments, created_at, updated_at
		FROM community_posts
		WHERE id = ?
	`
	post := &models.CommunityPost{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.AuthorID, &post.Body, &post.ImageURL,
		&post.Likes, &post.Upvotes, &post.Comments, &post.CreatedAt, &post.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return post, nil
}

func (r *postRepository) Update(ctx context.Context, id uint64, body, imageURL string) error {
	query := `
		UPDATE community_posts
		SET body = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, body, imageURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPostNotFound
	}

	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM community_posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPostNotFound
	}

	return tx.Commit()
}

// ListFeed orders by the weighted engagement score, newest first on ties.
func (r *postRepository) ListFeed(ctx context.Context, limit, offset int32) ([]*models.CommunityPost, error) {
	query := `
		SELECT id, author_id, body, image_url, likes, upvotes, comments, created_at, updated_at
		FROM community_posts
		ORDER BY (likes + 2 * upvotes + 3 * comments) DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	defer rows.Close()

	var posts []*models.CommunityPost
	for rows.Next() {
		post := &models.CommunityPost{}
		if err := rows.Scan(
			&post.ID, &post.AuthorID, &post.Body, &post.ImageURL,
			&post.Likes, &post.Upvotes, &post.Comments, &post.CreatedAt, &post.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func (r *postRepository) AddLike(ctx context.Context, id uint64) error {
	return r.increment(ctx, id, "likes")
}

func (r *postRepository) AddUpvote(ctx context.Context, id uint64) error {
	return r.increment(ctx, id, "upvotes")
}

func (r *postRepository) increment(ctx context.Context, id uint64, column string) error {
	query := fmt.Sprintf(`
		UPDATE community_posts
		SET %s = %s + 1, updated_at = ?
		WHERE id = ?
	`, column, column)

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPostNotFound
	}

	return nil
}

// CreateComment inserts the comment and bumps the post's comment counter in
// one transaction so the feed score stays consistent.
func (r *postRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO comments (post_id, author_id, body, created_at) VALUES (?, ?, ?, ?)`,
		comment.PostID, comment.AuthorID, comment.Body, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get comment id: %w", err)
	}
	comment.ID = uint64(id)

	bump, err := tx.ExecContext(ctx,
		`UPDATE community_posts SET comments = comments + 1, updated_at = ? WHERE id = ?`,
		time.Now(), comment.PostID)
	if err != nil {
		return fmt.Errorf("failed to bump comment count: %w", err)
	}

	rowsAffected, err := bump.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPostNotFound
	}

	return tx.Commit()
}

func (r *postRepository) ListComments(ctx context.Context, postID uint64) ([]models.Comment, error) {
	query := `
		SELECT id, post_id, author_id, body, created_at
		FROM comments
		WHERE post_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}
