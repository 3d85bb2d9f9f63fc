// Package usecases exposes the dashboard counts view.
package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/counts"
	"jtrac/internal/domain/item"
	"jtrac/internal/domain/space"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type LoadCountsCommand struct {
	UserID uint
}

type LoadCountsUseCase struct {
	spaceRepo  space.SpaceRepository
	userRepo   user.UserRepository
	aggregator *counts.Aggregator
	logger     logger.Interface
}

func NewLoadCountsUseCase(
	spaceRepo space.SpaceRepository,
	userRepo user.UserRepository,
	aggregator *counts.Aggregator,
	logger logger.Interface,
) *LoadCountsUseCase {
	return &LoadCountsUseCase{
		spaceRepo:  spaceRepo,
		userRepo:   userRepo,
		aggregator: aggregator,
		logger:     logger,
	}
}

// Execute returns the consistent per-space counts for every space the user
// can access, plus grand totals. Global admins see every space.
func (uc *LoadCountsUseCase) Execute(ctx context.Context, cmd LoadCountsCommand) (*counts.CountsHolder, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}

	u, err := uc.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil || u == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("user %d not found", cmd.UserID))
	}

	var spaceIDs []uint
	if u.IsGlobalAdmin() {
		spaces, err := uc.spaceRepo.List(ctx)
		if err != nil {
			uc.logger.Errorw("failed to list spaces", "error", err)
			return nil, errors.NewInternalError("failed to list spaces")
		}
		for _, s := range spaces {
			spaceIDs = append(spaceIDs, s.ID())
		}
	} else {
		for _, g := range u.Grants() {
			if id := g.SpaceID(); id != nil {
				spaceIDs = append(spaceIDs, *id)
			}
		}
	}

	return uc.aggregator.SnapshotFor(u.ID(), spaceIDs), nil
}

// RecomputeCountsUseCase is the consistency repair path: it rebuilds the
// aggregator's counters from the authoritative item set.
type RecomputeCountsUseCase struct {
	itemRepo   item.ItemRepository
	aggregator *counts.Aggregator
	logger     logger.Interface
}

func NewRecomputeCountsUseCase(
	itemRepo item.ItemRepository,
	aggregator *counts.Aggregator,
	logger logger.Interface,
) *RecomputeCountsUseCase {
	return &RecomputeCountsUseCase{
		itemRepo:   itemRepo,
		aggregator: aggregator,
		logger:     logger,
	}
}

func (uc *RecomputeCountsUseCase) Execute(ctx context.Context) error {
	items, err := uc.itemRepo.FindByFilter(ctx, item.ItemFilter{})
	if err != nil {
		uc.logger.Errorw("failed to load items for recompute", "error", err)
		return errors.NewInternalError("failed to load items")
	}
	uc.aggregator.Recompute(items)
	uc.logger.Infow("counts recomputed", "items", len(items))
	return nil
}
