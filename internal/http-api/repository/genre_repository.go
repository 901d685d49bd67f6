package repository

import (
	"context"
	"fmt"

	"yamdb/internal/http-api/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	List(ctx context.Context, name string) ([]models.Genre, error)
	FindBySlug(ctx context.Context, slug string) (*models.Genre, error)
	FindByName(ctx context.Context, name string) (*models.Genre, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Create(ctx context.Context, genre *models.Genre) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) List(ctx context.Context, name string) ([]models.Genre, error) {
	var list []models.Genre
	q := conn(ctx, r.db)
	if name != "" {
		q = q.Where("name = ?", name)
	}
	if err := q.Order("slug asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	return list, nil
}

func (r *genreRepository) FindBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := conn(ctx, r.db).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *genreRepository) FindByName(ctx context.Context, name string) (*models.Genre, error) {
	var g models.Genre
	if err := conn(ctx, r.db).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// FindBySlugs returns the genres that exist among slugs; missing slugs are
// simply absent from the result.
func (r *genreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var list []models.Genre
	if err := conn(ctx, r.db).Where("slug IN ?", slugs).Order("slug asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres by slug: %w", err)
	}
	return list, nil
}

func (r *genreRepository) Create(ctx context.Context, genre *models.Genre) error {
	if err := conn(ctx, r.db).Create(genre).Error; err != nil {
		return fmt.Errorf("create genre: %w", Translate(err))
	}
	return nil
}

// DeleteBySlug removes the genre and its title links.
func (r *genreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	result := conn(ctx, r.db).Where("slug = ?", slug).Delete(&models.Genre{})
	if result.Error != nil {
		return fmt.Errorf("delete genre: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
