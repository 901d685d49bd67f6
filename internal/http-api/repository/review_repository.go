package repository

import (
	"context"
	"fmt"

	"yamdb/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Orderings accepted by the review and comment listings.
var listOrderings = map[string]string{
	"score":     "score asc, id asc",
	"-score":    "score desc, id asc",
	"pub_date":  "pub_date asc, id asc",
	"-pub_date": "pub_date desc, id desc",
}

// ValidOrdering reports whether ordering is a known sort key.
func ValidOrdering(ordering string) bool {
	_, ok := listOrderings[ordering]
	return ok
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
	GetByTitleAndID(ctx context.Context, titleID, id int64) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, ordering string) ([]models.Review, error)
	ExistsForAuthor(ctx context.Context, titleID int64, authorID string) (bool, error)
	TitleIDsByAuthor(ctx context.Context, authorID string) ([]int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", Translate(err))
	}
	return nil
}

// Update writes score and text only; title, author and pub_date are fixed.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := conn(ctx, r.db).
		Model(&models.Review{ID: review.ID}).
		Select("Score", "Text").
		Updates(review).Error
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&models.Review{})
	if result.Error != nil {
		return fmt.Errorf("delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByTitleAndID returns the review only if it belongs to the title.
func (r *reviewRepository) GetByTitleAndID(ctx context.Context, titleID, id int64) (*models.Review, error) {
	var review models.Review
	err := conn(ctx, r.db).
		Where("id = ? AND title_id = ?", id, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, ordering string) ([]models.Review, error) {
	order, ok := listOrderings[ordering]
	if !ok {
		order = listOrderings["-score"]
	}

	var reviews []models.Review
	err := conn(ctx, r.db).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order(order).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) ExistsForAuthor(ctx context.Context, titleID int64, authorID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}
	return count > 0, nil
}

// TitleIDsByAuthor lists the titles the author has reviewed, ascending.
func (r *reviewRepository) TitleIDsByAuthor(ctx context.Context, authorID string) ([]int64, error) {
	var ids []int64
	err := conn(ctx, r.db).
		Model(&models.Review{}).
		Where("author_id = ?", authorID).
		Order("title_id asc").
		Pluck("title_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list reviewed titles: %w", err)
	}
	return ids, nil
}
