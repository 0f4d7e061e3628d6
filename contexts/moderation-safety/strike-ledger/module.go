package strikeledger

import (
	"log/slog"
	"time"

	httpadapter "warden/contexts/moderation-safety/strike-ledger/adapters/http"
	"warden/contexts/moderation-safety/strike-ledger/adapters/memory"
	"warden/contexts/moderation-safety/strike-ledger/application/commands"
	"warden/contexts/moderation-safety/strike-ledger/application/queries"
	"warden/contexts/moderation-safety/strike-ledger/application/workers"
	"warden/contexts/moderation-safety/strike-ledger/domain/services"
	"warden/contexts/moderation-safety/strike-ledger/ports"
)

type Module struct {
	Handler       httpadapter.Handler
	RecordWarning commands.RecordWarningUseCase
	Access        queries.CheckAccessQuery
	Sweep         workers.BanExpirySweep
	Store         *memory.Store
}

type Dependencies struct {
	Ledger        ports.LedgerRepository
	Principals    ports.AuthPrincipalStore
	Notifications ports.NotificationSink
	Audit         ports.AuditAppender
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator

	WarningBanThreshold int
	BanDuration         time.Duration
	SweepBatchSize      int
	SweepConcurrency    int

	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	policy := services.StrikePolicy{
		Threshold:   deps.WarningBanThreshold,
		BanDuration: deps.BanDuration,
	}
	recordWarning := commands.RecordWarningUseCase{
		Ledger:        deps.Ledger,
		Principals:    deps.Principals,
		Notifications: deps.Notifications,
		Audit:         deps.Audit,
		Policy:        policy,
		Clock:         deps.Clock,
		IDGen:         deps.IDGenerator,
		Logger:        deps.Logger,
	}
	access := queries.CheckAccessQuery{Ledger: deps.Ledger}
	sweep := workers.BanExpirySweep{
		Ledger:        deps.Ledger,
		Principals:    deps.Principals,
		Notifications: deps.Notifications,
		Audit:         deps.Audit,
		Clock:         deps.Clock,
		BatchSize:     deps.SweepBatchSize,
		Concurrency:   deps.SweepConcurrency,
		Logger:        deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			RecordWarning: recordWarning,
			ManualBan: commands.ManualBanUseCase{
				Ledger:        deps.Ledger,
				Principals:    deps.Principals,
				Notifications: deps.Notifications,
				Audit:         deps.Audit,
				Clock:         deps.Clock,
				Logger:        deps.Logger,
			},
			ManualUnban: commands.ManualUnbanUseCase{
				Ledger:        deps.Ledger,
				Principals:    deps.Principals,
				Notifications: deps.Notifications,
				Audit:         deps.Audit,
				Clock:         deps.Clock,
				Logger:        deps.Logger,
			},
			Standing: queries.GetStandingQuery{Ledger: deps.Ledger, Clock: deps.Clock},
			Access:   access,
			Sweep:    sweep,
			Logger:   deps.Logger,
		},
		RecordWarning: recordWarning,
		Access:        access,
		Sweep:         sweep,
	}
}

// NewInMemoryModule wires the ledger against an in-memory store. audit may be nil.
func NewInMemoryModule(audit ports.AuditAppender, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:        store,
		Principals:    store,
		Notifications: store,
		Audit:         audit,
		Clock:         store,
		IDGenerator:   store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
