package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"

	"gorm.io/gorm"
)

// TitleInput is the write shape of a title. Genres and category are slugs.
// On partial updates nil fields are left unchanged.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Genres      []string
	Category    *string
}

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter) ([]models.Title, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, in TitleInput) (*models.Title, error)
	Update(ctx context.Context, id int64, in TitleInput, partial bool) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titles     repository.TitleRepository
	genres     repository.GenreRepository
	categories repository.CategoryRepository
	tx         repository.TxManager
	now        func() time.Time
}

func NewTitleService(
	titles repository.TitleRepository,
	genres repository.GenreRepository,
	categories repository.CategoryRepository,
	tx repository.TxManager,
) TitleService {
	return &titleService{titles: titles, genres: genres, categories: categories, tx: tx, now: time.Now}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter) ([]models.Title, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	return s.titles.List(ctx, filter)
}

func (s *titleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "title not found")
	}
	return title, nil
}

func (s *titleService) Create(ctx context.Context, in TitleInput) (*models.Title, error) {
	title := &models.Title{}
	if in.Name == nil {
		return nil, apperr.Validation("name", "this field is required")
	}
	if err := s.applyScalars(title, in, false); err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	title.CategoryID = categoryID

	genreIDs, err := s.resolveGenres(ctx, in.Genres)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.titles.Create(ctx, title); err != nil {
			return err
		}
		return s.titles.ReplaceGenres(ctx, title.ID, genreIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, title.ID)
}

// Update applies in to the title. A full update clears fields missing from in;
// a partial one leaves them alone.
func (s *titleService) Update(ctx context.Context, id int64, in TitleInput, partial bool) (*models.Title, error) {
	title, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !partial && in.Name == nil {
		return nil, apperr.Validation("name", "this field is required")
	}
	if err := s.applyScalars(title, in, partial); err != nil {
		return nil, err
	}

	if in.Category != nil || !partial {
		categoryID, err := s.resolveCategory(ctx, in.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = categoryID
	}

	replaceGenres := in.Genres != nil || !partial
	var genreIDs []int64
	if replaceGenres {
		if genreIDs, err = s.resolveGenres(ctx, in.Genres); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.titles.Update(ctx, title); err != nil {
			return err
		}
		if replaceGenres {
			return s.titles.ReplaceGenres(ctx, title.ID, genreIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, title.ID)
}

// Delete removes the title with its reviews and comments.
func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titles.Delete(ctx, id); err != nil {
		return notFound(err, "title not found")
	}
	return nil
}

func (s *titleService) applyScalars(title *models.Title, in TitleInput, partial bool) error {
	errs := map[string]string{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		switch {
		case name == "":
			errs["name"] = "this field may not be blank"
		case tooLong(name, maxTitleLength):
			errs["name"] = maxLengthMessage(maxTitleLength)
		default:
			title.Name = name
		}
	}

	if in.Year != nil {
		if current := s.now().Year(); *in.Year > current {
			errs["year"] = fmt.Sprintf("year cannot be later than %d", current)
		} else {
			year := *in.Year
			title.Year = &year
		}
	} else if !partial {
		title.Year = nil
	}

	if in.Description != nil {
		description := *in.Description
		title.Description = &description
	} else if !partial {
		title.Description = nil
	}

	if len(errs) > 0 {
		return apperr.ValidationFields(errs)
	}
	return nil
}

func (s *titleService) resolveCategory(ctx context.Context, slug *string) (*int64, error) {
	if slug == nil || strings.TrimSpace(*slug) == "" {
		return nil, nil
	}
	category, err := s.categories.FindBySlug(ctx, strings.TrimSpace(*slug))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundField("category", fmt.Sprintf("category %q does not exist", *slug))
	}
	if err != nil {
		return nil, err
	}
	return &category.ID, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]int64, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	found, err := s.genres.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]int64, len(found))
	for _, g := range found {
		bySlug[g.Slug] = g.ID
	}
	ids := make([]int64, 0, len(slugs))
	for _, slug := range slugs {
		id, ok := bySlug[slug]
		if !ok {
			return nil, apperr.NotFoundField("genre", fmt.Sprintf("genre %q does not exist", slug))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
