package dto

import "yamdb/internal/http-api/models"

// TitleRequest is the write shape: genres and category are given by slug.
// Rating is read-only and ignored if sent.
type TitleRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" binding:"omitempty,dive,max=15,slug"`
	Category    *string  `json:"category" binding:"omitempty,max=15"`
}

type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        *int              `json:"year"`
	Rating      *float64          `json:"rating"`
	Description *string           `json:"description"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

func FromModelToTitleResponse(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       FromModelsToGenreResponses(t.Genres),
	}
	if t.Category != nil {
		category := FromModelToCategoryResponse(t.Category)
		resp.Category = &category
	}
	return resp
}

func FromModelsToTitleResponses(list []models.Title) []TitleResponse {
	out := make([]TitleResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModelToTitleResponse(&list[i]))
	}
	return out
}
