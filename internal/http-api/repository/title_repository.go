package repository

import (
	"context"
	"fmt"

	"yamdb/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleFilter narrows title listings. Zero values are ignored.
type TitleFilter struct {
	Name     string
	Year     *int
	Genre    string
	Category string
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter) ([]models.Title, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	LockByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, title *models.Title) error
	Update(ctx context.Context, title *models.Title) error
	ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
	RecomputeRating(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func preloadTitle(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.slug asc") })
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter) ([]models.Title, error) {
	var list []models.Title
	q := preloadTitle(conn(ctx, r.db).Model(&models.Title{}))

	if filter.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+escapeLike(filter.Name)+"%")
	}
	if filter.Year != nil {
		q = q.Where("titles.year = ?", *filter.Year)
	}
	if filter.Genre != "" {
		q = q.Where(`EXISTS (
			SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = titles.id AND g.slug = ?)`, filter.Genre)
	}
	if filter.Category != "" {
		q = q.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", filter.Category)
	}

	if err := q.Order("titles.id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	return list, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var title models.Title
	if err := preloadTitle(conn(ctx, r.db)).Where("titles.id = ?", id).First(&title).Error; err != nil {
		return nil, err
	}
	return &title, nil
}

// LockByID selects the title row FOR UPDATE. Only meaningful inside a transaction.
func (r *titleRepository) LockByID(ctx context.Context, id int64) (*models.Title, error) {
	var title models.Title
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&title).Error
	if err != nil {
		return nil, err
	}
	return &title, nil
}

// Create inserts the title row only; genres are linked with ReplaceGenres.
func (r *titleRepository) Create(ctx context.Context, title *models.Title) error {
	if err := conn(ctx, r.db).Omit(clause.Associations, "Rating").Create(title).Error; err != nil {
		return fmt.Errorf("create title: %w", Translate(err))
	}
	return nil
}

// Update writes the editable columns. Rating is never written here.
func (r *titleRepository) Update(ctx context.Context, title *models.Title) error {
	err := conn(ctx, r.db).
		Model(&models.Title{ID: title.ID}).
		Select("Name", "Year", "Description", "CategoryID").
		Updates(title).Error
	if err != nil {
		return fmt.Errorf("update title: %w", Translate(err))
	}
	return nil
}

func (r *titleRepository) ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error {
	db := conn(ctx, r.db)
	if err := db.Where("title_id = ?", titleID).Delete(&models.TitleGenre{}).Error; err != nil {
		return fmt.Errorf("clear title genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}

	links := make([]models.TitleGenre, 0, len(genreIDs))
	seen := make(map[int64]struct{}, len(genreIDs))
	for _, id := range genreIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		links = append(links, models.TitleGenre{TitleID: titleID, GenreID: id})
	}
	if err := db.Create(&links).Error; err != nil {
		return fmt.Errorf("link title genres: %w", Translate(err))
	}
	return nil
}

// Delete removes the title with its reviews, comments and genre links.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&models.Title{})
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecomputeRating sets rating to the mean review score, NULL when there are none.
func (r *titleRepository) RecomputeRating(ctx context.Context, id int64) error {
	err := conn(ctx, r.db).Exec(
		`UPDATE titles SET rating = (SELECT AVG(score)::double precision FROM reviews WHERE title_id = ?) WHERE id = ?`,
		id, id,
	).Error
	if err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}
	return nil
}
