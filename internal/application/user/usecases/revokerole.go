package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/space"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type RevokeRoleCommand struct {
	UserID uint
	// SpaceID is nil for the global admin grant.
	SpaceID *uint
}

type RevokeRoleUseCase struct {
	userRepo  user.UserRepository
	spaceRepo space.SpaceRepository
	logger    logger.Interface
}

func NewRevokeRoleUseCase(
	userRepo user.UserRepository,
	spaceRepo space.SpaceRepository,
	logger logger.Interface,
) *RevokeRoleUseCase {
	return &RevokeRoleUseCase{
		userRepo:  userRepo,
		spaceRepo: spaceRepo,
		logger:    logger,
	}
}

// Execute withdraws a grant. The grant lives on the user aggregate alone, so
// dropping it cannot leave a dangling reference on the space side.
func (uc *RevokeRoleUseCase) Execute(ctx context.Context, cmd RevokeRoleCommand) error {
	uc.logger.Infow("executing revoke role use case", "user_id", cmd.UserID)

	if cmd.UserID == 0 {
		return errors.NewValidationError("user ID is required")
	}

	u, err := uc.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil || u == nil {
		return errors.NewNotFoundError(fmt.Sprintf("user %d not found", cmd.UserID))
	}

	if err := u.RemoveSpaceRole(cmd.SpaceID); err != nil {
		return errors.NewNotFoundError(err.Error())
	}

	if err := uc.userRepo.Update(ctx, u); err != nil {
		uc.logger.Errorw("failed to update user", "user_id", cmd.UserID, "error", err)
		return errors.NewInternalError("failed to update user")
	}

	uc.logger.Infow("role revoked", "user_id", cmd.UserID)
	return nil
}
