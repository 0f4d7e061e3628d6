package audittrail

import (
	"log/slog"

	httpadapter "warden/contexts/moderation-safety/audit-trail/adapters/http"
	"warden/contexts/moderation-safety/audit-trail/adapters/memory"
	"warden/contexts/moderation-safety/audit-trail/application"
	"warden/contexts/moderation-safety/audit-trail/ports"
)

// Module is the composition surface for the audit trail.
// Other modules append through Service; Store is exposed for tests/inspection.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
