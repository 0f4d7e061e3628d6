package moderationpipeline

import (
	"log/slog"
	"time"

	httpadapter "warden/contexts/moderation-safety/moderation-pipeline/adapters/http"
	"warden/contexts/moderation-safety/moderation-pipeline/adapters/memory"
	"warden/contexts/moderation-safety/moderation-pipeline/application/commands"
	"warden/contexts/moderation-safety/moderation-pipeline/application/queries"
	"warden/contexts/moderation-safety/moderation-pipeline/application/workers"
	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

type Module struct {
	Handler       httpadapter.Handler
	Moderate      commands.ModerateAssetUseCase
	AssetConsumer workers.AssetCreatedConsumer
	StaleReaper   workers.StaleUploadReaper
	OutboxRelay   workers.OutboxRelay
	Store         *memory.Store
}

type Dependencies struct {
	Assets      ports.AssetRepository
	Outbox      ports.OutboxRepository
	Lease       ports.RunLease
	Text        ports.TextClassifier
	Image       ports.ImageClassifier
	Strikes     ports.StrikeRecorder
	Audit       ports.AuditAppender
	Subscriber  ports.EventSubscriber
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGenerator ports.IDGenerator

	TextTimeout      time.Duration
	ImageTimeout     time.Duration
	StaleUploadAfter time.Duration

	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	moderate := commands.ModerateAssetUseCase{
		Assets:       deps.Assets,
		Lease:        deps.Lease,
		Text:         deps.Text,
		Image:        deps.Image,
		Strikes:      deps.Strikes,
		Audit:        deps.Audit,
		Clock:        deps.Clock,
		IDGen:        deps.IDGenerator,
		TextTimeout:  deps.TextTimeout,
		ImageTimeout: deps.ImageTimeout,
		Logger:       deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Moderate: moderate,
			Rescan: commands.RescanAssetUseCase{
				Assets:       deps.Assets,
				Image:        deps.Image,
				Audit:        deps.Audit,
				ImageTimeout: deps.ImageTimeout,
				Logger:       deps.Logger,
			},
			GetAsset: queries.GetAssetModerationQuery{Assets: deps.Assets},
			Logger:   deps.Logger,
		},
		Moderate: moderate,
		AssetConsumer: workers.AssetCreatedConsumer{
			Subscriber: deps.Subscriber,
			Moderate:   moderate,
			Logger:     deps.Logger,
		},
		StaleReaper: workers.StaleUploadReaper{
			Assets:     deps.Assets,
			Moderate:   moderate,
			Clock:      deps.Clock,
			StaleAfter: deps.StaleUploadAfter,
			Logger:     deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule keeps assets, outbox and leases in memory. Classifiers and
// cross-module ports still come from deps.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	deps.Assets = store
	deps.Outbox = store
	deps.Lease = store
	deps.Clock = store
	deps.IDGenerator = store
	module := NewModule(deps)
	module.Store = store
	return module
}
