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
	sharedConfig "jtrac/internal/shared/config"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type RemoveItemCommand struct {
	ItemID  uint
	ActorID uint
}

type RemoveItemResult struct {
	ItemID uint
	// DetachedLinks counts the relation edges that pointed at the removed
	// item and were dropped.
	DetachedLinks int
	// CascadedItems lists items removed alongside under the cascade policy.
	CascadedItems []uint
}

type RemoveItemUseCase struct {
	spaceRepo  space.SpaceRepository
	userRepo   user.UserRepository
	itemRepo   item.ItemRepository
	engine     *permission.Engine
	aggregator *counts.Aggregator
	dispatcher events.EventPublisher
	policy     sharedConfig.RelationPolicy
	logger     logger.Interface
}

func NewRemoveItemUseCase(
	spaceRepo space.SpaceRepository,
	userRepo user.UserRepository,
	itemRepo item.ItemRepository,
	engine *permission.Engine,
	aggregator *counts.Aggregator,
	dispatcher events.EventPublisher,
	policy sharedConfig.RelationPolicy,
	logger logger.Interface,
) *RemoveItemUseCase {
	if policy == "" {
		policy = sharedConfig.RelationPolicyDetach
	}
	return &RemoveItemUseCase{
		spaceRepo:  spaceRepo,
		userRepo:   userRepo,
		itemRepo:   itemRepo,
		engine:     engine,
		aggregator: aggregator,
		dispatcher: dispatcher,
		policy:     policy,
		logger:     logger,
	}
}

func (uc *RemoveItemUseCase) Execute(ctx context.Context, cmd RemoveItemCommand) (*RemoveItemResult, error) {
	uc.logger.Infow("executing remove item use case", "item_id", cmd.ItemID, "actor_id", cmd.ActorID)

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
		return nil, errors.NewNotFoundError(fmt.Sprintf("space %d not found", it.SpaceID()))
	}

	actor, err := uc.userRepo.GetByID(ctx, cmd.ActorID)
	if err != nil || actor == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("user %d not found", cmd.ActorID))
	}
	if !actor.IsGlobalAdmin() && !uc.engine.CanMutate(actor, s, it) {
		return nil, errors.NewUnauthorizedActionError(it.State().String(), it.State().String())
	}

	result := &RemoveItemResult{ItemID: it.ID()}
	if err := uc.remove(ctx, it, cmd.ActorID, result, make(map[uint]bool)); err != nil {
		return nil, err
	}

	uc.logger.Infow("item removed", "item_id", cmd.ItemID,
		"detached_links", result.DetachedLinks, "cascaded_items", len(result.CascadedItems))

	return result, nil
}

// remove detaches or cascades the edges pointing at victim, emits the
// negative counts delta, and deletes the item. Cascade recursion tracks
// visited items so relation cycles cannot loop.
func (uc *RemoveItemUseCase) remove(ctx context.Context, victim *item.Item, actorID uint, result *RemoveItemResult, visited map[uint]bool) error {
	if visited[victim.ID()] {
		return nil
	}
	visited[victim.ID()] = true

	holders, err := uc.itemRepo.FindRelatedTo(ctx, victim.ID())
	if err != nil {
		return errors.NewInternalError("failed to find related items")
	}

	for _, holder := range holders {
		if visited[holder.ID()] {
			continue
		}
		if uc.policy == sharedConfig.RelationPolicyCascade && holder.HasRelationTo(victim.ID(), item.RelationDependsOn) {
			if err := uc.remove(ctx, holder, actorID, result, visited); err != nil {
				return err
			}
			result.CascadedItems = append(result.CascadedItems, holder.ID())
			continue
		}
		detached := holder.DetachRelationsTo(victim.ID())
		if detached == 0 {
			continue
		}
		result.DetachedLinks += detached
		if err := uc.itemRepo.Update(ctx, holder); err != nil {
			uc.logger.Errorw("failed to detach relations", "item_id", holder.ID(), "error", err)
			return err
		}
	}

	// The negative delta commits before the removal completes, in the same
	// unit of work.
	uc.aggregator.Apply(counts.RemovalDelta(victim))

	if err := uc.itemRepo.Delete(ctx, victim.ID()); err != nil {
		uc.logger.Errorw("failed to delete item", "item_id", victim.ID(), "error", err)
		return errors.NewInternalError("failed to delete item")
	}

	uc.dispatcher.Publish(item.NewItemRemovedEvent(victim.ID(), victim.SpaceID(), result.DetachedLinks, actorID))
	return nil
}
