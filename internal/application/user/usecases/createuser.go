package usecases

import (
	"context"
	"fmt"

	"jtrac/internal/domain/user"
	"jtrac/internal/shared/errors"
	"jtrac/internal/shared/logger"
)

type CreateUserCommand struct {
	LoginName string
	Name      string
	Email     string
}

type CreateUserResult struct {
	UserID    uint
	LoginName string
}

type CreateUserUseCase struct {
	userRepo user.UserRepository
	logger   logger.Interface
}

func NewCreateUserUseCase(userRepo user.UserRepository, logger logger.Interface) *CreateUserUseCase {
	return &CreateUserUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, cmd CreateUserCommand) (*CreateUserResult, error) {
	uc.logger.Infow("executing create user use case", "login_name", cmd.LoginName)

	existing, err := uc.userRepo.GetByLoginName(ctx, cmd.LoginName)
	if err != nil {
		uc.logger.Errorw("failed to check for existing user", "login_name", cmd.LoginName, "error", err)
		return nil, errors.NewInternalError("failed to check existing user")
	}
	if existing != nil {
		return nil, errors.NewConflictError(fmt.Sprintf("login name %q is already in use", cmd.LoginName))
	}

	u, err := user.NewUser(cmd.LoginName, cmd.Name, cmd.Email)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.userRepo.Save(ctx, u); err != nil {
		uc.logger.Errorw("failed to save user", "login_name", cmd.LoginName, "error", err)
		return nil, errors.NewInternalError("failed to save user")
	}

	uc.logger.Infow("user created", "user_id", u.ID(), "login_name", u.LoginName())

	return &CreateUserResult{
		UserID:    u.ID(),
		LoginName: u.LoginName(),
	}, nil
}
