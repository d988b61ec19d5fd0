package service

import (
	"context"
	"errors"
	"fmt"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
	"skillswap/backend/pkg/helpers"
)

var ErrPostNotFound = errors.New("post not found")

// PostService owns the community feed. Edits and deletes are author-only;
// anyone signed in may react or comment.
type PostService interface {
	CreatePost(ctx context.Context, authorID uint64, body, imageURL string) (*models.CommunityPost, error)
	GetPost(ctx context.Context, postID uint64) (*models.CommunityPost, error)
	UpdatePost(ctx context.Context, actorID, postID uint64, body, imageURL string) (*models.CommunityPost, error)
	DeletePost(ctx context.Context, actorID, postID uint64) error
	ListFeed(ctx context.Context, page, perPage int32) ([]*models.CommunityPost, error)
	LikePost(ctx context.Context, postID uint64) error
	UpvotePost(ctx context.Context, postID uint64) error
	AddComment(ctx context.Context, authorID, postID uint64, body string) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint64) ([]models.Comment, error)
}

type postService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) PostService {
	return &postService{postRepo: postRepo}
}

func (s *postService) CreatePost(ctx context.Context, authorID uint64, body, imageURL string) (*models.CommunityPost, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: %s", ErrValidation, helpers.EncodeValidationError(
			helpers.CreateValidationError("body", "post body is required")))
	}

	post := &models.CommunityPost{
		AuthorID: authorID,
		Body:     body,
		ImageURL: imageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

func (s *postService) GetPost(ctx context.Context, postID uint64) (*models.CommunityPost, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, actorID, postID uint64, body, imageURL string) (*models.CommunityPost, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, ErrUnauthorized
	}
	if body == "" {
		return nil, fmt.Errorf("%w: %s", ErrValidation, helpers.EncodeValidationError(
			helpers.CreateValidationError("body", "post body is required")))
	}

	if err := s.postRepo.Update(ctx, postID, body, imageURL); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	post.Body = body
	post.ImageURL = imageURL
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, actorID, postID uint64) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return ErrUnauthorized
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

func (s *postService) ListFeed(ctx context.Context, page, perPage int32) ([]*models.CommunityPost, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.postRepo.ListFeed(ctx, perPage, (page-1)*perPage)
}

func (s *postService) LikePost(ctx context.Context, postID uint64) error {
	if err := s.postRepo.AddLike(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to like post: %w", err)
	}
	return nil
}

func (s *postService) UpvotePost(ctx context.Context, postID uint64) error {
	if err := s.postRepo.AddUpvote(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to upvote post: %w", err)
	}
	return nil
}

func (s *postService) AddComment(ctx context.Context, authorID, postID uint64, body string) (*models.Comment, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: %s", ErrValidation, helpers.EncodeValidationError(
			helpers.CreateValidationError("body", "comment body is required")))
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.postRepo.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return comment, nil
}

func (s *postService) ListComments(ctx context.Context, postID uint64) ([]models.Comment, error) {
	return s.postRepo.ListComments(ctx, postID)
}
