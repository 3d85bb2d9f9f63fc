// Package demo runs a scripted walkthrough of the engine against the
// in-memory persistence collaborators.
package demo

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	countsUC "jtrac/internal/application/counts/usecases"
	itemUC "jtrac/internal/application/item/usecases"
	spaceUC "jtrac/internal/application/space/usecases"
	userUC "jtrac/internal/application/user/usecases"
	"jtrac/internal/domain/counts"
	"jtrac/internal/domain/permission"
	"jtrac/internal/domain/shared/events"
	"jtrac/internal/domain/space"
	"jtrac/internal/infrastructure/config"
	"jtrac/internal/infrastructure/memory"
	"jtrac/internal/shared/logger"
)

const defaultSchema = `fields:
  - name: severity
    label: Severity
    type: select
    options: [minor, major, critical]
  - name: resolution
    label: Resolution
roles:
  - key: ROLE_TESTER
    label: Tester
  - key: ROLE_DEVELOPER
    label: Developer
states:
  - OPEN
  - FIXED
transitions:
  - from: NEW
    to: OPEN
    roles: [ROLE_TESTER]
  - from: OPEN
    to: FIXED
    roles: [ROLE_DEVELOPER]
    required: [resolution]
  - from: FIXED
    to: CLOSED
    roles: [ROLE_TESTER]
`

var schemaPath string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted workflow walkthrough",
		Long:  `Seed an in-memory space with two users, log an item, and walk it through the workflow to a terminal state.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to a schema file (default: built-in bug workflow)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	schema := []byte(defaultSchema)
	if schemaPath != "" {
		schema, err = os.ReadFile(schemaPath)
		if err != nil {
			return fmt.Errorf("failed to read schema file: %w", err)
		}
	}

	ctx := context.Background()

	spaceRepo := memory.NewSpaceRepository()
	userRepo := memory.NewUserRepository()
	itemRepo := memory.NewItemRepository()
	allocator := space.NewInMemorySequenceAllocator()
	aggregator := counts.NewAggregator()
	dispatcher := events.NewSyncEventDispatcher(log)
	engine := permission.NewEngine()

	createSpace := spaceUC.NewCreateSpaceUseCase(spaceRepo, log)
	createUser := userUC.NewCreateUserUseCase(userRepo, log)
	grantRole := userUC.NewGrantRoleUseCase(userRepo, spaceRepo, log)
	createItem := itemUC.NewCreateItemUseCase(spaceRepo, userRepo, itemRepo, allocator, aggregator, dispatcher, log)
	transitionItem := itemUC.NewTransitionItemUseCase(spaceRepo, userRepo, itemRepo, engine, dispatcher, log)
	loadCounts := countsUC.NewLoadCountsUseCase(spaceRepo, userRepo, aggregator, log)

	spaceResult, err := createSpace.Execute(ctx, spaceUC.CreateSpaceCommand{
		PrefixCode:         "DEMO",
		Name:               "Demo space",
		MetadataDefinition: schema,
	})
	if err != nil {
		return err
	}

	tester, err := createUser.Execute(ctx, userUC.CreateUserCommand{
		LoginName: "alice", Name: "Alice", Email: "alice@example.com",
	})
	if err != nil {
		return err
	}
	developer, err := createUser.Execute(ctx, userUC.CreateUserCommand{
		LoginName: "bob", Name: "Bob", Email: "bob@example.com",
	})
	if err != nil {
		return err
	}

	if err := grantRole.Execute(ctx, userUC.GrantRoleCommand{
		UserID: tester.UserID, SpaceID: &spaceResult.SpaceID, RoleKey: "ROLE_TESTER",
	}); err != nil {
		return err
	}
	if err := grantRole.Execute(ctx, userUC.GrantRoleCommand{
		UserID: developer.UserID, SpaceID: &spaceResult.SpaceID, RoleKey: "ROLE_DEVELOPER",
	}); err != nil {
		return err
	}

	created, err := createItem.Execute(ctx, itemUC.CreateItemCommand{
		SpaceID:     spaceResult.SpaceID,
		ActorID:     tester.UserID,
		Summary:     "Crash on empty input",
		Detail:      "Submitting an empty form crashes the server.",
		AssigneeID:  &developer.UserID,
		FieldValues: map[string]string{"severity": "major"},
	})
	if err != nil {
		return err
	}
	fmt.Printf("Logged %s (%s)\n", created.Ref, created.State)

	steps := []struct {
		actorID     uint
		targetState string
		fieldValues map[string]string
		comment     string
	}{
		{tester.UserID, "OPEN", nil, "confirmed on latest build"},
		{developer.UserID, "FIXED", map[string]string{"resolution": "guard against empty payloads"}, ""},
		{tester.UserID, "CLOSED", nil, "verified"},
	}
	for _, step := range steps {
		result, err := transitionItem.Execute(ctx, itemUC.TransitionItemCommand{
			ItemID:      created.ItemID,
			ActorID:     step.actorID,
			TargetState: step.targetState,
			FieldValues: step.fieldValues,
			Comment:     step.comment,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s -> %s\n", created.Ref, result.FromState, result.ToState)
	}

	holder, err := loadCounts.Execute(ctx, countsUC.LoadCountsCommand{UserID: developer.UserID})
	if err != nil {
		return err
	}
	c := holder.For(spaceResult.SpaceID)
	fmt.Printf("Counts for bob in DEMO: loggedByMe=%d assignedToMe=%d total=%d\n",
		c.LoggedByMe, c.AssignedToMe, c.Total)

	return nil
}
