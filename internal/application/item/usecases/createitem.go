package usecases

import (
	"context"
	"fmt"
	"time"

	"jtrac/internal/domain/counts"
	"jtrac/internal/domain/item"
	"jtrac/internal/domain/shared/events"
	"jtrac/internal/domain/space"
	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type CreateItemCommand struct {
	SpaceID     uint
	ActorID     uint
	Summary     string
	Detail      string
	AssigneeID  *uint
	FieldValues map[string]string
}

type CreateItemResult struct {
	ItemID      uint
	SequenceNum uint
	Ref         string
	State       string
	CreatedAt   time.Time
}

type CreateItemUseCase struct {
	spaceRepo  space.SpaceRepository
	userRepo   user.UserRepository
	itemRepo   item.ItemRepository
	sequence   space.SequenceAllocator
	aggregator *counts.Aggregator
	dispatcher events.EventPublisher
	logger     logger.Interface
}

func NewCreateItemUseCase(
	spaceRepo space.SpaceRepository,
	userRepo user.UserRepository,
	itemRepo item.ItemRepository,
	sequence space.SequenceAllocator,
	aggregator *counts.Aggregator,
	dispatcher events.EventPublisher,
	logger logger.Interface,
) *CreateItemUseCase {
	return &CreateItemUseCase{
		spaceRepo:  spaceRepo,
		userRepo:   userRepo,
		itemRepo:   itemRepo,
		sequence:   sequence,
		aggregator: aggregator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (uc *CreateItemUseCase) Execute(ctx context.Context, cmd CreateItemCommand) (*CreateItemResult, error) {
	uc.logger.Infow("executing create item use case", "space_id", cmd.SpaceID, "actor_id", cmd.ActorID)

	if err := uc.validateCommand(cmd); err != nil {
		uc.logger.Errorw("invalid create item command", "error", err)
		return nil, err
	}

	s, err := uc.spaceRepo.GetByID(ctx, cmd.SpaceID)
	if err != nil || s == nil {
		uc.logger.Errorw("failed to get space", "space_id", cmd.SpaceID, "error", err)
		return nil, errors.NewNotFoundError(fmt.Sprintf("space %d not found", cmd.SpaceID))
	}

	actor, err := uc.userRepo.GetByID(ctx, cmd.ActorID)
	if err != nil || actor == nil {
		uc.logger.Errorw("failed to get user", "user_id", cmd.ActorID, "error", err)
		return nil, errors.NewNotFoundError(fmt.Sprintf("user %d not found", cmd.ActorID))
	}

	if len(actor.EffectiveRoles(s.ID(), s.Metadata().RoleKeys())) == 0 {
		return nil, errors.NewUnauthorizedActionError("", item.InitialState().String())
	}

	if err := validateFieldValues(s.Metadata(), cmd.FieldValues); err != nil {
		return nil, err
	}

	newItem, err := item.NewItem(cmd.SpaceID, cmd.ActorID, cmd.Summary, cmd.Detail)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := newItem.SetInitialFieldValues(cmd.FieldValues); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if cmd.AssigneeID != nil {
		if _, err := newItem.Assign(cmd.AssigneeID, cmd.ActorID); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	// Sequence allocation and item persistence sit in the same unit of work:
	// a failed creation rolls both back, but an allocated number is never
	// handed out twice.
	seq, err := uc.sequence.Next(s.ID())
	if err != nil {
		uc.logger.Errorw("failed to allocate sequence number", "space_id", s.ID(), "error", err)
		return nil, err
	}
	if err := newItem.SetSequenceNum(seq); err != nil {
		return nil, errors.NewInternalError(err.Error())
	}

	if err := uc.itemRepo.Save(ctx, newItem); err != nil {
		uc.logger.Errorw("failed to save item", "space_id", s.ID(), "error", err)
		return nil, errors.NewInternalError("failed to save item")
	}

	if !s.ItemsLogged() {
		s.MarkItemsLogged()
		if err := uc.spaceRepo.Update(ctx, s); err != nil {
			uc.logger.Errorw("failed to update space", "space_id", s.ID(), "error", err)
			return nil, errors.NewInternalError("failed to update space")
		}
	}

	uc.aggregator.Apply(counts.CreationDelta(newItem))
	uc.dispatcher.Publish(item.NewItemCreatedEvent(newItem.ID(), s.ID(), seq, s.ItemRef(seq), cmd.ActorID))

	uc.logger.Infow("item created", "item_id", newItem.ID(), "ref", s.ItemRef(seq))

	return &CreateItemResult{
		ItemID:      newItem.ID(),
		SequenceNum: seq,
		Ref:         s.ItemRef(seq),
		State:       newItem.State().String(),
		CreatedAt:   newItem.CreatedAt(),
	}, nil
}

func (uc *CreateItemUseCase) validateCommand(cmd CreateItemCommand) error {
	if cmd.SpaceID == 0 {
		return errors.NewValidationError("space ID is required")
	}
	if cmd.ActorID == 0 {
		return errors.NewValidationError("acting user ID is required")
	}
	if len(cmd.Summary) == 0 {
		return errors.NewValidationError("summary is required")
	}
	return nil
}
