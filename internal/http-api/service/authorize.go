package service

import "yamdb/internal/http-api/permission"

// Authorizer decides whether the caller may modify obj. Update and Delete
// run it inside their transaction on the row they are about to change, so
// the decision and the write see the same author.
type Authorizer func(obj permission.Owned) error

func (a Authorizer) check(obj permission.Owned) error {
	if a == nil {
		return nil
	}
	return a(obj)
}
