package app

import (
	"context"

	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Begin занимает пользователя под распознавание; entity.ErrBusy, если предыдущее ещё идёт.
func (s *UserService) Begin(ctx context.Context, userID, chatID int64) error {
	ok, err := s.repo.SwapState(ctx, userID, chatID, entity.StateIdle, entity.StateProcessing)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrBusy
	}
	return nil
}

func (s *UserService) AwaitImage(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingImage)
}

func (s *UserService) Resume(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateProcessing)
}

// Finish освобождает пользователя после распознавания
func (s *UserService) Finish(ctx context.Context, userID int64) error {
	return s.repo.UpdateState(ctx, userID, entity.StateIdle)
}
