package container

import (
	"time"

	"go.uber.org/zap"

	app "tagger-bot/internal/application"
	"tagger-bot/internal/domain/entity"
	"tagger-bot/internal/domain/port"
)

// Options зависимости, из которых собираются сервисы
type Options struct {
	Users         port.UserRepository
	Tagger        port.Tagger
	History       port.HistoryRepository // nil, если история выключена
	Prompter      port.Prompter
	Messenger     port.Messenger
	Settings      entity.TaggerSettings
	PromptTimeout time.Duration
	Log           *zap.Logger
}

type Container struct {
	UserService    *app.UserService
	TaggingService *app.TaggingService
}

func New(opts Options) *Container {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	userService := app.NewUserService(opts.Users)
	resolver := app.NewImageResolver(opts.Prompter, userService, opts.PromptTimeout, log.Named("resolver"))
	taggingService := app.NewTaggingService(
		userService,
		resolver,
		opts.Tagger,
		opts.History,
		opts.Messenger,
		opts.Settings,
		log.Named("tagging"),
	)

	return &Container{
		UserService:    userService,
		TaggingService: taggingService,
	}
}
