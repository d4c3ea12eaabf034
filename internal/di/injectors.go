//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"mediabot/internal"
	"mediabot/internal/controllers"
	"mediabot/internal/events"
	"mediabot/internal/jobs"
	"mediabot/internal/overseerr"
	"mediabot/internal/providers"
	"mediabot/internal/security"
	"mediabot/internal/services"
	"mediabot/internal/storage"
	"mediabot/internal/structures"
	"mediabot/internal/telegram"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewCompressor,
		storage.NewStore,
		storage.NewWriteQueue,
		storage.NewRepository,
		wire.Bind(new(storage.RepositoryInterface), new(*storage.Repository)),

		security.NewSealer,
		overseerr.NewClient,
		overseerr.NewClientInterface,
		events.NewPublisher,

		services.NewAuthService,
		wire.Bind(new(services.AuthServiceInterface), new(*services.AuthService)),
		services.NewModeService,
		wire.Bind(new(services.ModeServiceInterface), new(*services.ModeService)),
		services.NewSessionService,
		wire.Bind(new(services.SessionServiceInterface), new(*services.SessionService)),
		services.NewMediaService,
		wire.Bind(new(services.MediaServiceInterface), new(*services.MediaService)),
		services.NewConversationStore,
		wire.Bind(new(services.ConversationStoreInterface), new(*services.ConversationStore)),
		services.NewUserLocker,

		telegram.NewBotAPI,
		telegram.NewBotMessenger,
		telegram.NewMessenger,
		telegram.NewPoller,

		controllers.NewBotController,
		controllers.NewHandler,
		controllers.NewHealthController,
		jobs.NewScheduler,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
