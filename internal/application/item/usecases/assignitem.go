package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/counts"
	"jtrac/internal/domain/item"
	"jtrac/internal/domain/permission"
	"jtrac/internal/domain/shared/events"
	"jtrac/internal/domain/space"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type AssignItemCommand struct {
	ItemID  uint
	ActorID uint
	// AssigneeID nil clears the assignment.
	AssigneeID *uint
}

type AssignItemResult struct {
	ItemID           uint
	PreviousAssignee *uint
	NewAssignee      *uint
}

type AssignItemUseCase struct {
	spaceRepo  space.SpaceRepository
	userRepo   user.UserRepository
	itemRepo   item.ItemRepository
	engine     *permission.Engine
	aggregator *counts.Aggregator
	dispatcher events.EventPublisher
	logger     logger.Interface
}

func NewAssignItemUseCase(
	spaceRepo space.SpaceRepository,
	userRepo user.UserRepository,
	itemRepo item.ItemRepository,
	engine *permission.Engine,
	aggregator *counts.Aggregator,
	dispatcher events.EventPublisher,
	logger logger.Interface,
) *AssignItemUseCase {
	return &AssignItemUseCase{
		spaceRepo:  spaceRepo,
		userRepo:   userRepo,
		itemRepo:   itemRepo,
		engine:     engine,
		aggregator: aggregator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (uc *AssignItemUseCase) Execute(ctx context.Context, cmd AssignItemCommand) (*AssignItemResult, error) {
	uc.logger.Infow("executing assign item use case", "item_id", cmd.ItemID, "actor_id", cmd.ActorID)

	if cmd.ItemID == 0 {
		return nil, errors.NewValidationError("item ID is required")
	}
	if cmd.ActorID == 0 {
		return nil, errors.NewValidationError("acting user ID is required")
	}

	it, err := uc.itemRepo.GetByID(ctx, cmd.ItemID)
	if err != nil || it == nil {
		uc.logger.Errorw("failed to get item", "item_id", cmd.ItemID, "error", err)
		return nil, errors.NewNotFoundError(fmt.Sprintf("item %d not found", cmd.ItemID))
	}

	s, err := uc.spaceRepo.GetByID(ctx, it.SpaceID())
	if err != nil || s == nil {
		uc.logger.Errorw("failed to get space", "space_id", it.SpaceID(), "error", err)
		return nil, errors.NewNotFoundError(fmt.Sprintf("space %d not found", it.SpaceID()))
	}

	actor, err := uc.userRepo.GetByID(ctx, cmd.ActorID)
	if err != nil || actor == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("user %d not found", cmd.ActorID))
	}

	// Reassignment skips the state machine but not the permission check: a
	// pure observer of the current state cannot reassign.
	if !uc.engine.CanMutate(actor, s, it) {
		return nil, errors.NewUnauthorizedActionError(it.State().String(), it.State().String())
	}

	if cmd.AssigneeID != nil {
		assignee, err := uc.userRepo.GetByID(ctx, *cmd.AssigneeID)
		if err != nil || assignee == nil {
			return nil, errors.NewNotFoundError(fmt.Sprintf("user %d not found", *cmd.AssigneeID))
		}
		if len(assignee.EffectiveRoles(s.ID(), s.Metadata().RoleKeys())) == 0 {
			return nil, errors.NewValidationError(
				fmt.Sprintf("user %q holds no role in space %s", assignee.LoginName(), s.PrefixCode()))
		}
	}

	previous, err := it.Assign(cmd.AssigneeID, cmd.ActorID)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.itemRepo.Update(ctx, it); err != nil {
		uc.logger.Errorw("failed to update item", "item_id", it.ID(), "error", err)
		return nil, err
	}

	uc.aggregator.Apply(counts.ReassignmentDelta(it.SpaceID(), previous, cmd.AssigneeID))
	uc.dispatcher.Publish(item.NewItemAssignedEvent(it.ID(), it.SpaceID(), previous, cmd.AssigneeID, cmd.ActorID))

	uc.logger.Infow("item reassigned", "item_id", it.ID())

	return &AssignItemResult{
		ItemID:           it.ID(),
		PreviousAssignee: previous,
		NewAssignee:      cmd.AssigneeID,
	}, nil
}
