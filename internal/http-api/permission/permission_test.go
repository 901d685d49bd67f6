package permission

import (
	"net/http"
	"testing"

	"yamdb/internal/http-api/models"

	"github.com/stretchr/testify/assert"
)

func user(id, role string) *models.User {
	return &models.User{ID: id, Role: role}
}

func TestRolePredicates(t *testing.T) {
	superuser := user("s", models.RoleUser)
	superuser.IsSuperuser = true

	assert.True(t, IsAdmin(user("a", models.RoleAdmin)))
	assert.True(t, IsAdmin(superuser))
	assert.False(t, IsAdmin(user("m", models.RoleModerator)))
	assert.False(t, IsAdmin(nil))

	assert.True(t, IsModerator(user("m", models.RoleModerator)))
	assert.False(t, IsModerator(user("a", models.RoleAdmin)))
	assert.False(t, IsModerator(nil))
}

func TestPolicies(t *testing.T) {
	plain := user("u1", models.RoleUser)
	moderator := user("m1", models.RoleModerator)
	admin := user("a1", models.RoleAdmin)

	tests := []struct {
		name   string
		policy Policy
		actor  *models.User
		method string
		want   bool
	}{
		{"allow any anonymous write", AllowAny, nil, http.MethodPost, true},
		{"read only get", ReadOnly, nil, http.MethodGet, true},
		{"read only post", ReadOnly, admin, http.MethodPost, false},
		{"authenticated anonymous", Authenticated, nil, http.MethodGet, false},
		{"authenticated user", Authenticated, plain, http.MethodPatch, true},
		{"admin only user", AdminOnly, plain, http.MethodGet, false},
		{"admin only moderator", AdminOnly, moderator, http.MethodGet, false},
		{"admin only admin", AdminOnly, admin, http.MethodDelete, true},
		{"catalog anonymous read", AdminOrReadOnly, nil, http.MethodGet, true},
		{"catalog user write", AdminOrReadOnly, plain, http.MethodPost, false},
		{"catalog admin write", AdminOrReadOnly, admin, http.MethodPost, true},
		{"content anonymous read", AuthorOrModeratorOrAdminOrReadOnly, nil, http.MethodGet, true},
		{"content anonymous write", AuthorOrModeratorOrAdminOrReadOnly, nil, http.MethodPost, false},
		{"content user write", AuthorOrModeratorOrAdminOrReadOnly, plain, http.MethodPost, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.HasPermission(tt.actor, tt.method))
		})
	}
}

func TestAuthorOrModeratorOrAdminObjectPermission(t *testing.T) {
	p := AuthorOrModeratorOrAdminOrReadOnly
	author := user("author", models.RoleUser)
	stranger := user("stranger", models.RoleUser)

	assert.True(t, p.HasObjectPermission(author, http.MethodPatch, "author"))
	assert.False(t, p.HasObjectPermission(stranger, http.MethodPatch, "author"))
	assert.True(t, p.HasObjectPermission(stranger, http.MethodGet, "author"))
	assert.True(t, p.HasObjectPermission(user("m", models.RoleModerator), http.MethodDelete, "author"))
	assert.True(t, p.HasObjectPermission(user("a", models.RoleAdmin), http.MethodDelete, "author"))
	assert.False(t, p.HasObjectPermission(nil, http.MethodDelete, "author"))
}
