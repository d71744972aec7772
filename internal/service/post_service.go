package service

import (
	"context"
	"time"

	"github.com/gosimple/slug"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	Title            string
	Text             string
	ShortDescription string
}

type UpdatePostInput struct {
	Title            *string
	Text             *string
	ShortDescription *string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// CreatePost publishes a new post authored by author. The slug is derived
// from the title here, once; later title edits never touch it.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePostShortDescription(in.ShortDescription); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		AuthorID:         author.ID,
		Slug:             slug.Make(in.Title),
		Title:            in.Title,
		Text:             in.Text,
		ShortDescription: in.ShortDescription,
		PublishedAt:      time.Now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) GetPostBySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	return s.postRepo.GetBySlug(ctx, postSlug)
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.postRepo.List(ctx, normalizeLimit(limit), normalizeOffset(offset))
}

// ListPostsByUsername returns the author's posts, newest first. An unknown
// username is an error so the route can 404 instead of returning an empty
// page.
func (s *PostService) ListPostsByUsername(ctx context.Context, username string, limit, offset int) ([]models.Post, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.postRepo.ListByAuthor(ctx, author.ID, normalizeLimit(limit), normalizeOffset(offset))
}

// UpdatePost applies a partial update on behalf of actor. The author can
// always edit their own post; anyone else must be able to manage the author.
func (s *PostService) UpdatePost(ctx context.Context, actor *models.User, postID uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizePostMutation(ctx, actor, post); err != nil {
		return nil, err
	}

	if in.Title == nil && in.Text == nil && in.ShortDescription == nil {
		return nil, models.NewValidationError("No fields to update")
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		if err := validation.ValidatePostTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["title"] = *in.Title
	}
	if in.Text != nil {
		if err := validation.ValidatePostText(*in.Text); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["text"] = *in.Text
	}
	if in.ShortDescription != nil {
		if err := validation.ValidatePostShortDescription(*in.ShortDescription); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["short_description"] = *in.ShortDescription
	}

	return s.postRepo.UpdateFields(ctx, postID, fields)
}

// DeletePost removes the post permanently, under the same authorization rule
// as UpdatePost.
func (s *PostService) DeletePost(ctx context.Context, actor *models.User, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.authorizePostMutation(ctx, actor, post); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *PostService) authorizePostMutation(ctx context.Context, actor *models.User, post *models.Post) error {
	if post.AuthorID == actor.ID {
		return nil
	}
	author, err := s.userRepo.GetByID(ctx, post.AuthorID)
	if err != nil {
		return err
	}
	if !CanManage(actor, author) {
		return models.NewForbiddenError("You do not have permission to manage this post")
	}
	return nil
}
