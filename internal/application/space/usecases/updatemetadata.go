package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/metadata"
	"jtrac/internal/domain/space"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type UpdateMetadataCommand struct {
	SpaceID            uint
	MetadataDefinition []byte
}

type UpdateMetadataUseCase struct {
	spaceRepo space.SpaceRepository
	logger    logger.Interface
}

func NewUpdateMetadataUseCase(spaceRepo space.SpaceRepository, logger logger.Interface) *UpdateMetadataUseCase {
	return &UpdateMetadataUseCase{
		spaceRepo: spaceRepo,
		logger:    logger,
	}
}

// Execute parses the new definition and publishes it as one atomic snapshot
// swap. Validation happens entirely at parse time: a malformed definition is
// rejected whole and readers keep the previous schema.
func (uc *UpdateMetadataUseCase) Execute(ctx context.Context, cmd UpdateMetadataCommand) error {
	uc.logger.Infow("executing update metadata use case", "space_id", cmd.SpaceID)

	if cmd.SpaceID == 0 {
		return errors.NewValidationError("space ID is required")
	}

	md, err := metadata.Parse(cmd.MetadataDefinition)
	if err != nil {
		uc.logger.Errorw("metadata definition rejected", "space_id", cmd.SpaceID, "error", err)
		return err
	}

	s, err := uc.spaceRepo.GetByID(ctx, cmd.SpaceID)
	if err != nil || s == nil {
		return errors.NewNotFoundError(fmt.Sprintf("space %d not found", cmd.SpaceID))
	}

	if err := s.ReplaceMetadata(md); err != nil {
		return errors.NewValidationError(err.Error())
	}
	if err := uc.spaceRepo.Update(ctx, s); err != nil {
		uc.logger.Errorw("failed to update space", "space_id", cmd.SpaceID, "error", err)
		return errors.NewInternalError("failed to update space")
	}

	uc.logger.Infow("metadata replaced", "space_id", cmd.SpaceID)
	return nil
}
