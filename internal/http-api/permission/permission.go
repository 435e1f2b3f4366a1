// Package permission implements the access predicates attached to endpoints.
//
// A request passes an endpoint when every predicate in its list allows it.
// Collection-level checks (HasPermission) run before the handler touches any
// object; object-level checks (HasObjectPermission) run once the target object
// has been loaded and only after the collection checks passed.
package permission

import (
	"errors"
	"net/http"

	"yamdb/internal/http-api/models"
)

var (
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

// Request is the part of an HTTP request the predicates look at.
type Request struct {
	Method string
	User   *models.User // nil for anonymous callers
}

func (r Request) Authenticated() bool { return r.User != nil }

// ReadOnly reports whether the method cannot modify state.
func (r Request) ReadOnly() bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Owned is implemented by objects that have an author.
type Owned interface {
	OwnerID() string
}

type Permission interface {
	HasPermission(r Request) bool
	HasObjectPermission(r Request, obj Owned) bool
}

// AllowAny lets every request through.
type AllowAny struct{}

func (AllowAny) HasPermission(Request) bool              { return true }
func (AllowAny) HasObjectPermission(Request, Owned) bool { return true }

type IsAuthenticated struct{}

func (IsAuthenticated) HasPermission(r Request) bool              { return r.Authenticated() }
func (IsAuthenticated) HasObjectPermission(r Request, _ Owned) bool { return r.Authenticated() }

// IsAuthenticatedOrReadOnly allows reads to anyone and writes to signed-in users.
type IsAuthenticatedOrReadOnly struct{}

func (IsAuthenticatedOrReadOnly) HasPermission(r Request) bool {
	return r.ReadOnly() || r.Authenticated()
}

func (p IsAuthenticatedOrReadOnly) HasObjectPermission(r Request, _ Owned) bool {
	return p.HasPermission(r)
}

// AdminOnly requires an authenticated admin or superuser.
type AdminOnly struct{}

func (AdminOnly) HasPermission(r Request) bool {
	return r.Authenticated() && r.User.IsAdmin()
}

func (p AdminOnly) HasObjectPermission(r Request, _ Owned) bool {
	return p.HasPermission(r)
}

// IsAuthorOrModeratorOrAdmin gates writes on a single object: its author,
// moderators and admins may modify it, everyone may read it.
type IsAuthorOrModeratorOrAdmin struct{}

func (IsAuthorOrModeratorOrAdmin) HasPermission(Request) bool { return true }

func (IsAuthorOrModeratorOrAdmin) HasObjectPermission(r Request, obj Owned) bool {
	if r.ReadOnly() {
		return true
	}
	if !r.Authenticated() {
		return false
	}
	return obj.OwnerID() == r.User.ID || r.User.IsModerator() || r.User.IsAdmin()
}

// Check runs the collection-level predicates.
func Check(r Request, perms ...Permission) error {
	for _, p := range perms {
		if !p.HasPermission(r) {
			return denied(r)
		}
	}
	return nil
}

// CheckObject runs the object-level predicates.
func CheckObject(r Request, obj Owned, perms ...Permission) error {
	for _, p := range perms {
		if !p.HasObjectPermission(r, obj) {
			return denied(r)
		}
	}
	return nil
}

func denied(r Request) error {
	if !r.Authenticated() {
		return ErrNotAuthenticated
	}
	return ErrPermissionDenied
}
