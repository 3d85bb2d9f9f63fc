// Package usecases wires the workflow engine's operations: logging items,
// transitioning them, reassignment, and removal. Each use case validates its
// command, consults the permission engine, applies the aggregate mutation,
// persists it, feeds the counts aggregator, and publishes a domain event,
// all within the unit of work provided by the persistence collaborator.
package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/metadata"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
)

// resolveActor loads the acting principal; actor ID zero is the anonymous
// guest sentinel.
func resolveActor(ctx context.Context, userRepo user.UserRepository, actorID uint) (*user.User, error) {
	if actorID == 0 {
		return user.Guest(), nil
	}
	u, err := userRepo.GetByID(ctx, actorID)
	if err != nil || u == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("user %d not found", actorID))
	}
	return u, nil
}

// validateFieldValues rejects values for fields the schema does not declare
// and select values outside the declared options.
func validateFieldValues(md *metadata.Metadata, values map[string]string) error {
	for name, value := range values {
		f, ok := md.FieldByName(name)
		if !ok {
			return errors.NewValidationError(fmt.Sprintf("field %q is not declared by the space's schema", name))
		}
		if !f.IsValidValue(value) {
			return errors.NewValidationError(fmt.Sprintf("value %q is not a valid option for field %q", value, name))
		}
	}
	return nil
}
