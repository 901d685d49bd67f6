package dto

import "yamdb/internal/http-api/models"

// CatalogRequest creates a category or a genre. The slug is derived from
// the name when omitted.
type CatalogRequest struct {
	Name string `json:"name" binding:"required,max=15"`
	Slug string `json:"slug" binding:"omitempty,max=15,slug"`
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromModelToCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{Name: c.Name, Slug: c.Slug}
}

func FromModelToGenreResponse(g *models.Genre) GenreResponse {
	return GenreResponse{Name: g.Name, Slug: g.Slug}
}

func FromModelsToCategoryResponses(list []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModelToCategoryResponse(&list[i]))
	}
	return out
}

func FromModelsToGenreResponses(list []models.Genre) []GenreResponse {
	out := make([]GenreResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModelToGenreResponse(&list[i]))
	}
	return out
}
