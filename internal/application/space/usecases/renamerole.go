package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/space"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type RenameRoleCommand struct {
	SpaceID uint
	OldKey  string
	NewKey  string
}

type RenameRoleResult struct {
	SpaceID uint
	// RenamedGrants counts the user grants rewritten to the new key.
	RenamedGrants int
}

type RenameRoleUseCase struct {
	spaceRepo space.SpaceRepository
	userRepo  user.UserRepository
	logger    logger.Interface
}

func NewRenameRoleUseCase(
	spaceRepo space.SpaceRepository,
	userRepo user.UserRepository,
	logger logger.Interface,
) *RenameRoleUseCase {
	return &RenameRoleUseCase{
		spaceRepo: spaceRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// Execute renames a role inside the space's schema and bulk-rewrites every
// grant holding the old key. Both sides change in the same unit of work so a
// grant never points at a role the schema no longer declares.
func (uc *RenameRoleUseCase) Execute(ctx context.Context, cmd RenameRoleCommand) (*RenameRoleResult, error) {
	uc.logger.Infow("executing rename role use case",
		"space_id", cmd.SpaceID, "old_key", cmd.OldKey, "new_key", cmd.NewKey)

	if err := uc.validateCommand(cmd); err != nil {
		return nil, err
	}

	s, err := uc.spaceRepo.GetByID(ctx, cmd.SpaceID)
	if err != nil || s == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("space %d not found", cmd.SpaceID))
	}

	renamed, err := s.Metadata().RenameRole(cmd.OldKey, cmd.NewKey)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.ReplaceMetadata(renamed); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.spaceRepo.Update(ctx, s); err != nil {
		uc.logger.Errorw("failed to update space", "space_id", cmd.SpaceID, "error", err)
		return nil, errors.NewInternalError("failed to update space")
	}

	count, err := uc.userRepo.BulkRenameSpaceRole(ctx, cmd.SpaceID, cmd.OldKey, cmd.NewKey)
	if err != nil {
		uc.logger.Errorw("failed to rename grants", "space_id", cmd.SpaceID, "error", err)
		return nil, errors.NewInternalError("failed to rename grants")
	}

	uc.logger.Infow("role renamed", "space_id", cmd.SpaceID, "renamed_grants", count)

	return &RenameRoleResult{
		SpaceID:       cmd.SpaceID,
		RenamedGrants: count,
	}, nil
}

func (uc *RenameRoleUseCase) validateCommand(cmd RenameRoleCommand) error {
	if cmd.SpaceID == 0 {
		return errors.NewValidationError("space ID is required")
	}
	if len(cmd.OldKey) == 0 || len(cmd.NewKey) == 0 {
		return errors.NewValidationError("old and new role keys are required")
	}
	if cmd.OldKey == cmd.NewKey {
		return errors.NewValidationError("old and new role keys are identical")
	}
	return nil
}
