package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/item"
	"jtrac/internal/domain/metadata"
	"jtrac/internal/domain/permission"
	"jtrac/internal/domain/shared/events"
	"jtrac/internal/domain/space"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type TransitionItemCommand struct {
	ItemID uint
	// ActorID zero is the anonymous guest.
	ActorID     uint
	TargetState string
	FieldValues map[string]string
	Comment     string
}

type TransitionItemResult struct {
	ItemID    uint
	FromState string
	ToState   string
	Version   int
}

type TransitionItemUseCase struct {
	spaceRepo  space.SpaceRepository
	userRepo   user.UserRepository
	itemRepo   item.ItemRepository
	engine     *permission.Engine
	dispatcher events.EventPublisher
	logger     logger.Interface
}

func NewTransitionItemUseCase(
	spaceRepo space.SpaceRepository,
	userRepo user.UserRepository,
	itemRepo item.ItemRepository,
	engine *permission.Engine,
	dispatcher events.EventPublisher,
	logger logger.Interface,
) *TransitionItemUseCase {
	return &TransitionItemUseCase{
		spaceRepo:  spaceRepo,
		userRepo:   userRepo,
		itemRepo:   itemRepo,
		engine:     engine,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (uc *TransitionItemUseCase) Execute(ctx context.Context, cmd TransitionItemCommand) (*TransitionItemResult, error) {
	uc.logger.Infow("executing transition item use case",
		"item_id", cmd.ItemID, "actor_id", cmd.ActorID, "target_state", cmd.TargetState)

	if err := uc.validateCommand(cmd); err != nil {
		uc.logger.Errorw("invalid transition item command", "error", err)
		return nil, err
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

	actor, err := resolveActor(ctx, uc.userRepo, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	target := metadata.State(cmd.TargetState)
	if err := uc.engine.Authorize(actor, s, it, target); err != nil {
		return nil, err
	}

	if err := validateFieldValues(s.Metadata(), cmd.FieldValues); err != nil {
		return nil, err
	}

	from := it.State()
	for _, name := range uc.engine.RequiredFieldsFor(s, from, target) {
		if cmd.FieldValues[name] == "" && it.FieldValue(name) == "" {
			return nil, errors.NewMissingRequiredFieldError(name, from.String(), target.String())
		}
	}

	if err := it.ApplyTransition(target, actorIDForHistory(actor), cmd.FieldValues, cmd.Comment); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	// Update carries the optimistic version check; a concurrent transition
	// on the same item surfaces here as OptimisticConflict.
	if err := uc.itemRepo.Update(ctx, it); err != nil {
		uc.logger.Errorw("failed to update item", "item_id", it.ID(), "error", err)
		return nil, err
	}

	// A transition moves no counters: the item stays in the space total and
	// with its logger and assignee.
	uc.dispatcher.Publish(item.NewItemTransitionedEvent(it.ID(), it.SpaceID(), from.String(), target.String(), cmd.ActorID))

	uc.logger.Infow("item transitioned", "item_id", it.ID(), "from", from, "to", target)

	return &TransitionItemResult{
		ItemID:    it.ID(),
		FromState: from.String(),
		ToState:   target.String(),
		Version:   it.Version(),
	}, nil
}

func (uc *TransitionItemUseCase) validateCommand(cmd TransitionItemCommand) error {
	if cmd.ItemID == 0 {
		return errors.NewValidationError("item ID is required")
	}
	if len(cmd.TargetState) == 0 {
		return errors.NewValidationError("target state is required")
	}
	return nil
}

// actorIDForHistory records the guest sentinel as actor zero.
func actorIDForHistory(actor *user.User) uint {
	if actor.IsGuest() {
		return 0
	}
	return actor.ID()
}
