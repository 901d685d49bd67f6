package service

import (
	"context"
	"fmt"
	"testing"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/permission"
	"yamdb/internal/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReviewTestService() (*MockReviewRepository, *MockTitleRepository, ReviewService) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	return reviews, titles, NewReviewService(reviews, titles, passthroughTx{}, permission.AuthorOrModeratorOrAdminOrReadOnly, nil)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func reader(id string) *models.User {
	return &models.User{ID: id, Role: models.RoleUser, IsActive: true}
}

func TestCreateReview_Success(t *testing.T) {
	reviews, titles, svc := newReviewTestService()
	actor := reader("u1")

	titles.On("LockByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil).Once()
	reviews.On("ExistsForAuthor", mock.Anything, int64(1), "u1").Return(false, nil).Once()
	reviews.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
		return r.TitleID == 1 && r.AuthorID == "u1" && r.Score == 8 && r.Text == "great"
	})).Return(nil).Once()
	titles.On("RecomputeRating", mock.Anything, int64(1)).Return(nil).Once()

	review, err := svc.Create(context.Background(), actor, 1, "great", 8)

	require.NoError(t, err)
	assert.Equal(t, "u1", review.Author.ID)
	reviews.AssertExpectations(t)
	titles.AssertExpectations(t)
}

func TestCreateReview_ScoreOutOfRange(t *testing.T) {
	reviews, titles, svc := newReviewTestService()

	for _, score := range []int{0, 11, -3} {
		_, err := svc.Create(context.Background(), reader("u1"), 1, "text", score)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "score %d", score)
	}
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	titles.AssertNotCalled(t, "RecomputeRating", mock.Anything, mock.Anything)
}

func TestCreateReview_Duplicate(t *testing.T) {
	reviews, titles, svc := newReviewTestService()

	titles.On("LockByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil).Once()
	reviews.On("ExistsForAuthor", mock.Anything, int64(1), "u1").Return(true, nil).Once()

	_, err := svc.Create(context.Background(), reader("u1"), 1, "again", 5)

	assert.True(t, apperr.Is(err, apperr.KindConflict))
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	titles.AssertNotCalled(t, "RecomputeRating", mock.Anything, mock.Anything)
}

func TestCreateReview_DuplicateRace(t *testing.T) {
	reviews, titles, svc := newReviewTestService()

	titles.On("LockByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil).Once()
	reviews.On("ExistsForAuthor", mock.Anything, int64(1), "u1").Return(false, nil).Once()
	reviews.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("create review: %w", repository.ErrDuplicate)).Once()

	_, err := svc.Create(context.Background(), reader("u1"), 1, "again", 5)

	assert.True(t, apperr.Is(err, apperr.KindConflict))
	titles.AssertNotCalled(t, "RecomputeRating", mock.Anything, mock.Anything)
}

func TestCreateReview_TitleMissing(t *testing.T) {
	_, titles, svc := newReviewTestService()
	titles.On("LockByID", mock.Anything, int64(9)).Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := svc.Create(context.Background(), reader("u1"), 9, "text", 5)

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateReview_Anonymous(t *testing.T) {
	_, _, svc := newReviewTestService()

	_, err := svc.Create(context.Background(), nil, 1, "text", 5)

	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestUpdateReview_Permissions(t *testing.T) {
	tests := []struct {
		name    string
		actor   *models.User
		allowed bool
	}{
		{"author", reader("author"), true},
		{"moderator", &models.User{ID: "m", Role: models.RoleModerator}, true},
		{"admin", &models.User{ID: "a", Role: models.RoleAdmin}, true},
		{"superuser", &models.User{ID: "s", Role: models.RoleUser, IsSuperuser: true}, true},
		{"stranger", reader("stranger"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews, titles, svc := newReviewTestService()
			existing := &models.Review{ID: 3, TitleID: 1, AuthorID: "author", Score: 4, Text: "meh"}

			titles.On("LockByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil).Once()
			reviews.On("GetByTitleAndID", mock.Anything, int64(1), int64(3)).Return(existing, nil).Once()
			if tt.allowed {
				reviews.On("Update", mock.Anything, existing).Return(nil).Once()
				titles.On("RecomputeRating", mock.Anything, int64(1)).Return(nil).Once()
			}

			review, err := svc.Update(context.Background(), tt.actor, 1, 3, ReviewInput{Score: intPtr(9)})

			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, 9, review.Score)
				assert.Equal(t, "meh", review.Text)
			} else {
				assert.True(t, apperr.Is(err, apperr.KindPermission))
				reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
			reviews.AssertExpectations(t)
			titles.AssertExpectations(t)
		})
	}
}

// ownerPolicy records the object checks it is asked for.
type ownerPolicy struct {
	allow bool
	calls []string
}

func (p *ownerPolicy) HasPermission(*models.User, string) bool { return true }

func (p *ownerPolicy) HasObjectPermission(_ *models.User, method string, ownerID string) bool {
	p.calls = append(p.calls, method+" "+ownerID)
	return p.allow
}

func TestReviewWrites_ConsultObjectPolicy(t *testing.T) {
	reviews := new(MockReviewRepository)
	titles := new(MockTitleRepository)
	policy := &ownerPolicy{allow: false}
	svc := NewReviewService(reviews, titles, passthroughTx{}, policy, nil)
	existing := &models.Review{ID: 3, TitleID: 1, AuthorID: "author", Score: 4, Text: "meh"}

	titles.On("LockByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil).Twice()
	reviews.On("GetByTitleAndID", mock.Anything, int64(1), int64(3)).Return(existing, nil).Twice()

	// the author is refused because the configured policy says so
	_, err := svc.Update(context.Background(), reader("author"), 1, 3, ReviewInput{Score: intPtr(9)})
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	err = svc.Delete(context.Background(), reader("author"), 1, 3)
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	assert.Equal(t, []string{"PATCH author", "DELETE author"}, policy.calls)
	reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpdateReview_TextOnlySkipsRecompute(t *testing.T) {
	reviews, titles, svc := newReviewTestService()
	existing := &models.Review{ID: 3, TitleID: 1, AuthorID: "u1", Score: 4, Text: "meh"}

	titles.On("LockByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil).Once()
	reviews.On("GetByTitleAndID", mock.Anything, int64(1), int64(3)).Return(existing, nil).Once()
	reviews.On("Update", mock.Anything, existing).Return(nil).Once()

	review, err := svc.Update(context.Background(), reader("u1"), 1, 3, ReviewInput{Text: strPtr("better")})

	require.NoError(t, err)
	assert.Equal(t, "better", review.Text)
	titles.AssertNotCalled(t, "RecomputeRating", mock.Anything, mock.Anything)
}

func TestUpdateReview_WrongTitle(t *testing.T) {
	reviews, titles, svc := newReviewTestService()

	titles.On("LockByID", mock.Anything, int64(2)).Return(&models.Title{ID: 2}, nil).Once()
	reviews.On("GetByTitleAndID", mock.Anything, int64(2), int64(3)).Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := svc.Update(context.Background(), reader("u1"), 2, 3, ReviewInput{Score: intPtr(5)})

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteReview_RecomputesRating(t *testing.T) {
	reviews, titles, svc := newReviewTestService()
	existing := &models.Review{ID: 3, TitleID: 1, AuthorID: "u1", Score: 4}

	titles.On("LockByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil).Once()
	reviews.On("GetByTitleAndID", mock.Anything, int64(1), int64(3)).Return(existing, nil).Once()
	reviews.On("Delete", mock.Anything, int64(3)).Return(nil).Once()
	titles.On("RecomputeRating", mock.Anything, int64(1)).Return(nil).Once()

	err := svc.Delete(context.Background(), &models.User{ID: "m", Role: models.RoleModerator}, 1, 3)

	require.NoError(t, err)
	reviews.AssertExpectations(t)
	titles.AssertExpectations(t)
}

func TestListReviews_TitleMissing(t *testing.T) {
	reviews, titles, svc := newReviewTestService()
	titles.On("GetByID", mock.Anything, int64(5)).Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := svc.List(context.Background(), 5, "")

	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	reviews.AssertNotCalled(t, "ListByTitle", mock.Anything, mock.Anything, mock.Anything)
}
