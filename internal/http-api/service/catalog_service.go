package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CategoryService interface {
	List(ctx context.Context, search string) ([]models.Category, error)
	Create(ctx context.Context, name, slug string) (*models.Category, error)
	Delete(ctx context.Context, slug string) error
}

type GenreService interface {
	List(ctx context.Context, search string) ([]models.Genre, error)
	Create(ctx context.Context, name, slug string) (*models.Genre, error)
	Delete(ctx context.Context, slug string) error
}

// normalizeNameSlug validates a catalog entry, deriving the slug from the
// name when none is given.
func normalizeNameSlug(name, s string) (string, string, error) {
	name = strings.TrimSpace(name)
	s = strings.TrimSpace(s)

	errs := map[string]string{}
	switch {
	case name == "":
		errs["name"] = "this field is required"
	case tooLong(name, maxSlugLength):
		errs["name"] = maxLengthMessage(maxSlugLength)
	}

	if s == "" && name != "" {
		s = slug.Make(name)
		if len(s) > maxSlugLength {
			s = strings.TrimRight(s[:maxSlugLength], "-")
		}
		if s == "" {
			errs["slug"] = "could not derive a slug from name"
		}
	}
	if _, taken := errs["slug"]; !taken && s != "" {
		switch {
		case tooLong(s, maxSlugLength):
			errs["slug"] = maxLengthMessage(maxSlugLength)
		case !models.ValidSlug(s):
			errs["slug"] = "enter a valid slug consisting of letters, numbers, underscores or hyphens"
		}
	}

	if len(errs) > 0 {
		return "", "", apperr.ValidationFields(errs)
	}
	return name, s, nil
}

// uniqueNameSlug turns the results of the name and slug lookups into field
// errors. A lookup that found a row means the value is taken.
func uniqueNameSlug(entity string, nameErr, slugErr error) error {
	errs := map[string]string{}
	for field, err := range map[string]error{"name": nameErr, "slug": slugErr} {
		switch {
		case err == nil:
			errs[field] = fmt.Sprintf("%s with this %s already exists", entity, field)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}
	if len(errs) > 0 {
		return apperr.ValidationFields(errs)
	}
	return nil
}

// duplicateCatalogError maps a unique violation that slipped past the
// pre-checks onto the name or slug field.
func duplicateCatalogError(entity string, err error) error {
	constraint, ok := repository.DuplicateConstraint(err)
	if !ok {
		return err
	}
	field := "slug"
	if strings.HasSuffix(constraint, "_name_key") {
		field = "name"
	}
	return apperr.Validation(field, fmt.Sprintf("%s with this %s already exists", entity, field)).Wrap(err)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, search string) ([]models.Category, error) {
	return s.repo.List(ctx, strings.TrimSpace(search))
}

func (s *categoryService) Create(ctx context.Context, name, slugValue string) (*models.Category, error) {
	name, slugValue, err := normalizeNameSlug(name, slugValue)
	if err != nil {
		return nil, err
	}
	_, nameErr := s.repo.FindByName(ctx, name)
	_, slugErr := s.repo.FindBySlug(ctx, slugValue)
	if err := uniqueNameSlug("category", nameErr, slugErr); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Slug: slugValue}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, duplicateCatalogError("category", err)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, slugValue string) error {
	if err := s.repo.DeleteBySlug(ctx, slugValue); err != nil {
		return notFound(err, "category not found")
	}
	return nil
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(repo repository.GenreRepository) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) List(ctx context.Context, search string) ([]models.Genre, error) {
	return s.repo.List(ctx, strings.TrimSpace(search))
}

func (s *genreService) Create(ctx context.Context, name, slugValue string) (*models.Genre, error) {
	name, slugValue, err := normalizeNameSlug(name, slugValue)
	if err != nil {
		return nil, err
	}
	_, nameErr := s.repo.FindByName(ctx, name)
	_, slugErr := s.repo.FindBySlug(ctx, slugValue)
	if err := uniqueNameSlug("genre", nameErr, slugErr); err != nil {
		return nil, err
	}

	genre := &models.Genre{Name: name, Slug: slugValue}
	if err := s.repo.Create(ctx, genre); err != nil {
		return nil, duplicateCatalogError("genre", err)
	}
	return genre, nil
}

func (s *genreService) Delete(ctx context.Context, slugValue string) error {
	if err := s.repo.DeleteBySlug(ctx, slugValue); err != nil {
		return notFound(err, "genre not found")
	}
	return nil
}
