package service

import (
	"context"
	"net/http"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/metrics"
)

const (
	minScore = 1
	maxScore = 10
)

// ReviewInput holds the editable review fields; nil means unchanged.
type ReviewInput struct {
	Text  *string
	Score *int
}

type ReviewService interface {
	List(ctx context.Context, titleID int64, ordering string) ([]models.Review, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, actor *models.User, titleID int64, text string, score int) (*models.Review, error)
	Update(ctx context.Context, actor *models.User, titleID, reviewID int64, in ReviewInput) (*models.Review, error)
	Delete(ctx context.Context, actor *models.User, titleID, reviewID int64) error
}

// reviewService keeps titles.rating equal to the mean review score. Every
// write locks the title row, so concurrent writes to one title serialize and
// the recompute always sees the committed set of reviews. Edits and deletes
// are checked against policy once the review is loaded.
type reviewService struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
	tx      repository.TxManager
	policy  permission.Policy
	metrics *metrics.Metrics
}

func NewReviewService(
	reviews repository.ReviewRepository,
	titles repository.TitleRepository,
	tx repository.TxManager,
	policy permission.Policy,
	m *metrics.Metrics,
) ReviewService {
	return &reviewService{reviews: reviews, titles: titles, tx: tx, policy: policy, metrics: m}
}

func (s *reviewService) List(ctx context.Context, titleID int64, ordering string) ([]models.Review, error) {
	if _, err := s.titles.GetByID(ctx, titleID); err != nil {
		return nil, notFound(err, "title not found")
	}
	return s.reviews.ListByTitle(ctx, titleID, ordering)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviews.GetByTitleAndID(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, "review not found")
	}
	return review, nil
}

func (s *reviewService) Create(ctx context.Context, actor *models.User, titleID int64, text string, score int) (*models.Review, error) {
	if actor == nil {
		return nil, apperr.Authentication("authentication credentials were not provided")
	}
	if err := validateReview(&text, &score); err != nil {
		return nil, err
	}

	review := &models.Review{TitleID: titleID, AuthorID: actor.ID, Score: score, Text: text}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.titles.LockByID(ctx, titleID); err != nil {
			return notFound(err, "title not found")
		}

		exists, err := s.reviews.ExistsForAuthor(ctx, titleID, actor.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("you have already reviewed this title")
		}

		if err := s.reviews.Create(ctx, review); err != nil {
			if isDuplicate(err) {
				return apperr.Conflict("you have already reviewed this title").Wrap(err)
			}
			return err
		}
		return s.titles.RecomputeRating(ctx, titleID)
	})
	if err != nil {
		return nil, err
	}

	review.Author = *actor
	s.metrics.ReviewWritten("create")
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, actor *models.User, titleID, reviewID int64, in ReviewInput) (*models.Review, error) {
	if err := validateReview(in.Text, in.Score); err != nil {
		return nil, err
	}

	var review *models.Review
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.titles.LockByID(ctx, titleID); err != nil {
			return notFound(err, "title not found")
		}

		var err error
		review, err = s.reviews.GetByTitleAndID(ctx, titleID, reviewID)
		if err != nil {
			return notFound(err, "review not found")
		}
		if !s.policy.HasObjectPermission(actor, http.MethodPatch, review.AuthorID) {
			return apperr.Permission("you do not have permission to perform this action")
		}

		scoreChanged := in.Score != nil && *in.Score != review.Score
		if in.Text != nil {
			review.Text = *in.Text
		}
		if in.Score != nil {
			review.Score = *in.Score
		}
		if err := s.reviews.Update(ctx, review); err != nil {
			return err
		}
		if scoreChanged {
			return s.titles.RecomputeRating(ctx, titleID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ReviewWritten("update")
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, actor *models.User, titleID, reviewID int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.titles.LockByID(ctx, titleID); err != nil {
			return notFound(err, "title not found")
		}

		review, err := s.reviews.GetByTitleAndID(ctx, titleID, reviewID)
		if err != nil {
			return notFound(err, "review not found")
		}
		if !s.policy.HasObjectPermission(actor, http.MethodDelete, review.AuthorID) {
			return apperr.Permission("you do not have permission to perform this action")
		}

		if err := s.reviews.Delete(ctx, review.ID); err != nil {
			return notFound(err, "review not found")
		}
		return s.titles.RecomputeRating(ctx, titleID)
	})
	if err != nil {
		return err
	}

	s.metrics.ReviewWritten("delete")
	return nil
}

func validateReview(text *string, score *int) error {
	errs := map[string]string{}
	if text != nil && strings.TrimSpace(*text) == "" {
		errs["text"] = "this field may not be blank"
	}
	if score != nil && (*score < minScore || *score > maxScore) {
		errs["score"] = "score must be between 1 and 10"
	}
	if len(errs) > 0 {
		return apperr.ValidationFields(errs)
	}
	return nil
}
