// Package usecases wires space administration: creating spaces, publishing
// schema edits, and renaming roles across grants.
package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/metadata"
	"jtrac/internal/domain/space"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type CreateSpaceCommand struct {
	PrefixCode   string
	Name         string
	Description  string
	GuestAllowed bool
	// MetadataDefinition is the YAML schema blob.
	MetadataDefinition []byte
}

type CreateSpaceResult struct {
	SpaceID    uint
	PrefixCode string
}

type CreateSpaceUseCase struct {
	spaceRepo space.SpaceRepository
	logger    logger.Interface
}

func NewCreateSpaceUseCase(spaceRepo space.SpaceRepository, logger logger.Interface) *CreateSpaceUseCase {
	return &CreateSpaceUseCase{
		spaceRepo: spaceRepo,
		logger:    logger,
	}
}

func (uc *CreateSpaceUseCase) Execute(ctx context.Context, cmd CreateSpaceCommand) (*CreateSpaceResult, error) {
	uc.logger.Infow("executing create space use case", "prefix_code", cmd.PrefixCode)

	md, err := metadata.Parse(cmd.MetadataDefinition)
	if err != nil {
		uc.logger.Errorw("metadata definition rejected", "prefix_code", cmd.PrefixCode, "error", err)
		return nil, err
	}

	if existing, err := uc.spaceRepo.GetByPrefixCode(ctx, cmd.PrefixCode); err == nil && existing != nil {
		return nil, errors.NewConflictError(fmt.Sprintf("prefix code %q is already in use", cmd.PrefixCode))
	}

	s, err := space.NewSpace(cmd.PrefixCode, cmd.Name, md)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if cmd.Description != "" {
		s.UpdateDescription(cmd.Description)
	}
	if cmd.GuestAllowed {
		s.AllowGuests()
	}

	if err := uc.spaceRepo.Save(ctx, s); err != nil {
		uc.logger.Errorw("failed to save space", "prefix_code", cmd.PrefixCode, "error", err)
		return nil, errors.NewInternalError("failed to save space")
	}

	uc.logger.Infow("space created", "space_id", s.ID(), "prefix_code", s.PrefixCode())

	return &CreateSpaceResult{
		SpaceID:    s.ID(),
		PrefixCode: s.PrefixCode(),
	}, nil
}
