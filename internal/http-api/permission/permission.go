// Package permission decides who may do what. A nil actor is an anonymous
// caller.
package permission

import (
	"net/http"

	"yamdb/internal/http-api/models"
)

// IsAdmin is true for the admin role and for superusers regardless of role.
func IsAdmin(actor *models.User) bool {
	return actor != nil && (actor.Role == models.RoleAdmin || actor.IsSuperuser)
}

func IsModerator(actor *models.User) bool {
	return actor != nil && actor.Role == models.RoleModerator
}

func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// canModerate reports whether actor may edit or delete content owned by ownerID.
func canModerate(actor *models.User, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || IsModerator(actor) || IsAdmin(actor)
}

// Policy is checked per request and, where a target object exists, per object.
type Policy interface {
	HasPermission(actor *models.User, method string) bool
	HasObjectPermission(actor *models.User, method string, ownerID string) bool
}

var (
	AllowAny                           Policy = allowAny{}
	ReadOnly                           Policy = readOnly{}
	Authenticated                      Policy = authenticated{}
	AdminOnly                          Policy = adminOnly{}
	AdminOrReadOnly                    Policy = adminOrReadOnly{}
	AuthorOrModeratorOrAdminOrReadOnly Policy = authorOrStaffOrReadOnly{}
)

type allowAny struct{}

func (allowAny) HasPermission(*models.User, string) bool               { return true }
func (allowAny) HasObjectPermission(*models.User, string, string) bool { return true }

type readOnly struct{}

func (readOnly) HasPermission(_ *models.User, method string) bool { return IsSafeMethod(method) }
func (readOnly) HasObjectPermission(_ *models.User, method string, _ string) bool {
	return IsSafeMethod(method)
}

type authenticated struct{}

func (authenticated) HasPermission(actor *models.User, _ string) bool { return actor != nil }
func (authenticated) HasObjectPermission(actor *models.User, _ string, _ string) bool {
	return actor != nil
}

type adminOnly struct{}

func (adminOnly) HasPermission(actor *models.User, _ string) bool { return IsAdmin(actor) }
func (adminOnly) HasObjectPermission(actor *models.User, _ string, _ string) bool {
	return IsAdmin(actor)
}

type adminOrReadOnly struct{}

func (adminOrReadOnly) HasPermission(actor *models.User, method string) bool {
	return IsSafeMethod(method) || IsAdmin(actor)
}

func (p adminOrReadOnly) HasObjectPermission(actor *models.User, method string, _ string) bool {
	return p.HasPermission(actor, method)
}

type authorOrStaffOrReadOnly struct{}

// Anyone may read; writing requires an authenticated caller.
func (authorOrStaffOrReadOnly) HasPermission(actor *models.User, method string) bool {
	return IsSafeMethod(method) || actor != nil
}

func (authorOrStaffOrReadOnly) HasObjectPermission(actor *models.User, method string, ownerID string) bool {
	return IsSafeMethod(method) || canModerate(actor, ownerID)
}
