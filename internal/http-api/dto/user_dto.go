package dto

import "yamdb/internal/http-api/models"

// UserRequest is the admin create/replace shape
type UserRequest struct {
	Email     string  `json:"email" binding:"required,email,max=254"`
	Username  *string `json:"username" binding:"omitempty,max=20,slug"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	Role      *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UserPatchRequest carries a partial update; absent fields stay unchanged
type UserPatchRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Username  *string `json:"username" binding:"omitempty,max=20,slug"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	Role      *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// Patch returns the request as a partial update
func (r UserRequest) Patch() UserPatchRequest {
	email := r.Email
	return UserPatchRequest{
		Email:     &email,
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Role:      r.Role,
	}
}

type UserResponse struct {
	Username  *string `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Bio       string  `json:"bio"`
	Role      string  `json:"role"`
}

func FromModelToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Role:      user.Role,
	}
}

func FromModelsToUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, FromModelToUserResponse(&users[i]))
	}
	return out
}
