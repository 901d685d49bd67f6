package service

import (
	"context"
	"net/http"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, ordering string) ([]models.Comment, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, actor *models.User, titleID, reviewID int64, text string) (*models.Comment, error)
	Update(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, text *string) (*models.Comment, error)
	Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
	policy   permission.Policy
}

func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository, policy permission.Policy) CommentService {
	return &commentService{comments: comments, reviews: reviews, policy: policy}
}

// review checks that the review exists under the title.
func (s *commentService) review(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviews.GetByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, "review not found")
	}
	return review, nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, ordering string) ([]models.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.comments.ListByReview(ctx, reviewID, ordering)
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByReviewAndID(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err, "comment not found")
	}
	return comment, nil
}

func (s *commentService) Create(ctx context.Context, actor *models.User, titleID, reviewID int64, text string) (*models.Comment, error) {
	if actor == nil {
		return nil, apperr.Authentication("authentication credentials were not provided")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("text", "this field may not be blank")
	}
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{ReviewID: reviewID, AuthorID: actor.ID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = *actor
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, text *string) (*models.Comment, error) {
	if text != nil && strings.TrimSpace(*text) == "" {
		return nil, apperr.Validation("text", "this field may not be blank")
	}

	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !s.policy.HasObjectPermission(actor, http.MethodPatch, comment.AuthorID) {
		return nil, apperr.Permission("you do not have permission to perform this action")
	}

	if text != nil {
		comment.Text = *text
		if err := s.comments.Update(ctx, comment); err != nil {
			return nil, err
		}
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error {
	comment, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !s.policy.HasObjectPermission(actor, http.MethodDelete, comment.AuthorID) {
		return apperr.Permission("you do not have permission to perform this action")
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return notFound(err, "comment not found")
	}
	return nil
}
