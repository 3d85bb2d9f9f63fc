package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/metadata"
	"jtrac/internal/domain/space"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type GrantRoleCommand struct {
	UserID uint
	// SpaceID is nil for the global admin grant.
	SpaceID *uint
	RoleKey string
}

type GrantRoleUseCase struct {
	userRepo  user.UserRepository
	spaceRepo space.SpaceRepository
	logger    logger.Interface
}

func NewGrantRoleUseCase(
	userRepo user.UserRepository,
	spaceRepo space.SpaceRepository,
	logger logger.Interface,
) *GrantRoleUseCase {
	return &GrantRoleUseCase{
		userRepo:  userRepo,
		spaceRepo: spaceRepo,
		logger:    logger,
	}
}

func (uc *GrantRoleUseCase) Execute(ctx context.Context, cmd GrantRoleCommand) error {
	uc.logger.Infow("executing grant role use case", "user_id", cmd.UserID, "role_key", cmd.RoleKey)

	if err := uc.validateCommand(cmd); err != nil {
		return err
	}

	u, err := uc.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil || u == nil {
		return errors.NewNotFoundError(fmt.Sprintf("user %d not found", cmd.UserID))
	}

	// A space-scoped grant must name a role the space's schema declares.
	if cmd.SpaceID != nil {
		s, err := uc.spaceRepo.GetByID(ctx, *cmd.SpaceID)
		if err != nil || s == nil {
			return errors.NewNotFoundError(fmt.Sprintf("space %d not found", *cmd.SpaceID))
		}
		if !s.Metadata().HasRole(cmd.RoleKey) {
			return errors.NewValidationError(
				fmt.Sprintf("role %q is not declared by space %q", cmd.RoleKey, s.PrefixCode()))
		}
	}

	if err := u.AddSpaceRole(cmd.SpaceID, cmd.RoleKey); err != nil {
		return errors.NewConflictError(err.Error())
	}

	if err := uc.userRepo.Update(ctx, u); err != nil {
		uc.logger.Errorw("failed to update user", "user_id", cmd.UserID, "error", err)
		return errors.NewInternalError("failed to update user")
	}

	uc.logger.Infow("role granted", "user_id", cmd.UserID, "role_key", cmd.RoleKey)
	return nil
}

func (uc *GrantRoleUseCase) validateCommand(cmd GrantRoleCommand) error {
	if cmd.UserID == 0 {
		return errors.NewValidationError("user ID is required")
	}
	if cmd.RoleKey == "" {
		return errors.NewValidationError("role key is required")
	}
	if cmd.SpaceID == nil && cmd.RoleKey != metadata.RoleAdmin {
		return errors.NewValidationError("only the admin role can be granted globally")
	}
	return nil
}
