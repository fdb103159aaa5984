package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"saveeat/internal/models"

	"github.com/google/uuid"
)

type PostRepository interface {
	List(ctx context.Context, viewerID *uuid.UUID, limit int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Post, error)
	ListLikedBy(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Post, error)
	GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, userID, id uuid.UUID, upd *models.PostUpdate) error
	Delete(ctx context.Context, userID, id uuid.UUID) ([]models.MediaItem, error)

	Like(ctx context.Context, postID, userID uuid.UUID) error
	Unlike(ctx context.Context, postID, userID uuid.UUID) error

	ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
}

// $1 is the viewer, NULL for anonymous callers
const postSelect = `SELECT p.id, p.user_id, p.title, p.body, p.ingredients, p.media, p.created_at, p.updated_at,
		(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count,
		(SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id) AS comment_count,
		EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1::uuid) AS is_liked
	FROM posts p`

const (
	listPostsSQL = postSelect + `
	ORDER BY p.created_at DESC
	LIMIT $2`

	listUserPostsSQL = postSelect + `
	WHERE p.user_id = $1
	ORDER BY p.created_at DESC
	LIMIT $2`

	listLikedPostsSQL = postSelect + `
	JOIN post_likes mine ON mine.post_id = p.id AND mine.user_id = $1
	ORDER BY mine.created_at DESC
	LIMIT $2`

	getPostSQL = postSelect + `
	WHERE p.id = $2`

	createPostSQL = `INSERT INTO posts (id, user_id, title, body, ingredients, media, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, NOW(), NOW())
		RETURNING created_at, updated_at`

	updatePostSQL = `UPDATE posts
		SET title = COALESCE($3, title),
			body = COALESCE($4, body),
			ingredients = COALESCE($5, ingredients),
			media = COALESCE($6::jsonb, media),
			updated_at = NOW()
		WHERE user_id = $1 AND id = $2`

	deletePostSQL = `DELETE FROM posts WHERE user_id = $1 AND id = $2 RETURNING media`

	likePostSQL = `INSERT INTO post_likes (post_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (post_id, user_id) DO NOTHING`

	unlikePostSQL = `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`

	listCommentsSQL = `SELECT id, post_id, user_id, body, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at ASC`

	createCommentSQL = `INSERT INTO post_comments (id, post_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at`
)

type postRepo struct {
	db DBTX
}

func NewPostRepo(db DBTX) PostRepository {
	return &postRepo{db: db}
}

func scanPost(row rowScanner) (*models.Post, error) {
	post := &models.Post{}
	var media []byte
	err := row.Scan(&post.ID, &post.UserID, &post.Title, &post.Body, &post.Ingredients, &media,
		&post.CreatedAt, &post.UpdatedAt, &post.LikeCount, &post.CommentCount, &post.IsLiked)
	if err != nil {
		return nil, err
	}
	if post.Media, err = decodeMedia(media); err != nil {
		return nil, err
	}
	if post.Ingredients == nil {
		post.Ingredients = []string{}
	}
	return post, nil
}

func decodeMedia(raw []byte) ([]models.MediaItem, error) {
	media := []models.MediaItem{}
	if len(raw) == 0 {
		return media, nil
	}
	if err := json.Unmarshal(raw, &media); err != nil {
		return nil, fmt.Errorf("failed to decode post media: %w", err)
	}
	return media, nil
}

// encodeMedia returns nil for a nil slice so COALESCE keeps the stored value
func encodeMedia(media []models.MediaItem) ([]byte, error) {
	if media == nil {
		return nil, nil
	}
	return json.Marshal(media)
}

func (r *postRepo) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

func (r *postRepo) List(ctx context.Context, viewerID *uuid.UUID, limit int) ([]*models.Post, error) {
	return r.queryPosts(ctx, listPostsSQL, viewerID, limit)
}

// ListByUser uses the author as viewer so is_liked reflects their own likes
func (r *postRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Post, error) {
	return r.queryPosts(ctx, listUserPostsSQL, userID, limit)
}

func (r *postRepo) ListLikedBy(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Post, error) {
	return r.queryPosts(ctx, listLikedPostsSQL, userID, limit)
}

func (r *postRepo) GetByID(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRow(ctx, getPostSQL, viewerID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	media, err := encodeMedia(post.Media)
	if err != nil {
		return fmt.Errorf("failed to encode post media: %w", err)
	}
	err = r.db.QueryRow(ctx, createPostSQL, post.ID, post.UserID, post.Title, post.Body,
		post.Ingredients, media).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postRepo) Update(ctx context.Context, userID, id uuid.UUID, upd *models.PostUpdate) error {
	media, err := encodeMedia(upd.Media)
	if err != nil {
		return fmt.Errorf("failed to encode post media: %w", err)
	}
	tag, err := r.db.Exec(ctx, updatePostSQL, userID, id, upd.Title, upd.Description, upd.Ingredients, media)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepo) Delete(ctx context.Context, userID, id uuid.UUID) ([]models.MediaItem, error) {
	var raw []byte
	if err := r.db.QueryRow(ctx, deletePostSQL, userID, id).Scan(&raw); err != nil {
		return nil, notFound(err)
	}
	return decodeMedia(raw)
}

func (r *postRepo) Like(ctx context.Context, postID, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, likePostSQL, postID, userID); err != nil {
		if missingParent(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to like post: %w", err)
	}
	return nil
}

func (r *postRepo) Unlike(ctx context.Context, postID, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, unlikePostSQL, postID, userID); err != nil {
		return fmt.Errorf("failed to unlike post: %w", err)
	}
	return nil
}

func (r *postRepo) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx, listCommentsSQL, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *postRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := r.db.QueryRow(ctx, createCommentSQL, comment.ID, comment.PostID, comment.UserID, comment.Body).
		Scan(&comment.CreatedAt)
	if err != nil {
		if missingParent(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}
