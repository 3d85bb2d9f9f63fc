// Package usecases covers principal administration inside the core: removing
// a user and detaching everything they own.
package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/item"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type RemoveUserCommand struct {
	UserID uint
}

type RemoveUserResult struct {
	UserID uint
	// DetachedWatches counts the item watches dropped with the user.
	DetachedWatches int
}

type RemoveUserUseCase struct {
	userRepo user.UserRepository
	itemRepo item.ItemRepository
	logger   logger.Interface
}

func NewRemoveUserUseCase(
	userRepo user.UserRepository,
	itemRepo item.ItemRepository,
	logger logger.Interface,
) *RemoveUserUseCase {
	return &RemoveUserUseCase{
		userRepo: userRepo,
		itemRepo: itemRepo,
		logger:   logger,
	}
}

// Execute removes a user, their grants (owned by the user, removed with it)
// and their item watches. A user still referenced by items or their history
// cannot be removed: the external reference trail stays intact.
func (uc *RemoveUserUseCase) Execute(ctx context.Context, cmd RemoveUserCommand) (*RemoveUserResult, error) {
	uc.logger.Infow("executing remove user use case", "user_id", cmd.UserID)

	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}

	u, err := uc.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil || u == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("user %d not found", cmd.UserID))
	}

	logged, err := uc.itemRepo.FindByFilter(ctx, item.ItemFilter{LoggedBy: &cmd.UserID})
	if err != nil {
		return nil, errors.NewInternalError("failed to check logged items")
	}
	assigned, err := uc.itemRepo.FindByFilter(ctx, item.ItemFilter{AssignedTo: &cmd.UserID})
	if err != nil {
		return nil, errors.NewInternalError("failed to check assigned items")
	}
	involved, err := uc.itemRepo.CountHistoryInvolvingUser(ctx, cmd.UserID)
	if err != nil {
		return nil, errors.NewInternalError("failed to check item history")
	}
	if len(logged) > 0 || len(assigned) > 0 || involved > 0 {
		return nil, errors.NewConflictError(
			fmt.Sprintf("user %q is referenced by items and cannot be removed", u.LoginName()))
	}

	watched, err := uc.itemRepo.FindWatchedBy(ctx, cmd.UserID)
	if err != nil {
		return nil, errors.NewInternalError("failed to find watched items")
	}
	detached := 0
	for _, it := range watched {
		it.RemoveWatcher(cmd.UserID)
		if err := uc.itemRepo.Update(ctx, it); err != nil {
			uc.logger.Errorw("failed to detach watch", "item_id", it.ID(), "error", err)
			return nil, err
		}
		detached++
	}

	if err := uc.userRepo.Delete(ctx, cmd.UserID); err != nil {
		uc.logger.Errorw("failed to delete user", "user_id", cmd.UserID, "error", err)
		return nil, errors.NewInternalError("failed to delete user")
	}

	uc.logger.Infow("user removed", "user_id", cmd.UserID, "detached_watches", detached)

	return &RemoveUserResult{
		UserID:          cmd.UserID,
		DetachedWatches: detached,
	}, nil
}
