// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	changesfeature "github.com/umunna-dev/umunna/internal/app/features/changes"
	documentsfeature "github.com/umunna-dev/umunna/internal/app/features/documents"
	familiesfeature "github.com/umunna-dev/umunna/internal/app/features/families"
	gedcomfeature "github.com/umunna-dev/umunna/internal/app/features/gedcomio"
	healthfeature "github.com/umunna-dev/umunna/internal/app/features/health"
	personsfeature "github.com/umunna-dev/umunna/internal/app/features/persons"
	relationshipsfeature "github.com/umunna-dev/umunna/internal/app/features/relationships"
	storiesfeature "github.com/umunna-dev/umunna/internal/app/features/stories"
	"github.com/umunna-dev/umunna/internal/app/workflow"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	changestore "github.com/umunna-dev/umunna/internal/app/store/changes"
	historystore "github.com/umunna-dev/umunna/internal/app/store/history"
	personstore "github.com/umunna-dev/umunna/internal/app/store/persons"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It creates the chi router, builds the
// workflow service, and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// The approval workflow is shared state behind the changes feature.
	workflowSvc := workflow.NewService(
		changestore.New(db),
		personstore.New(db),
		historystore.New(db),
		deps.Events,
		logger,
	)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Blobs, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Families and their scoped listings
	familiesHandler := familiesfeature.NewHandler(db, logger)
	r.Mount("/families", familiesfeature.Routes(familiesHandler))

	personsHandler := personsfeature.NewHandler(db, logger)
	r.Mount("/persons", personsfeature.Routes(personsHandler))
	r.Get("/families/{familyID}/persons", personsHandler.ListByFamily)

	relationshipsHandler := relationshipsfeature.NewHandler(db, logger)
	r.Mount("/relationships", relationshipsfeature.Routes(relationshipsHandler))
	r.Get("/families/{familyID}/relationships", relationshipsHandler.ListByFamily)

	// Edit-approval workflow
	changesHandler := changesfeature.NewHandler(db, workflowSvc, logger)
	r.Mount("/changes", changesfeature.Routes(changesHandler))
	r.Get("/persons/{personID}/changes", changesHandler.ListPending)
	r.Get("/persons/{personID}/history", changesHandler.HistoryByPerson)
	r.Get("/families/{familyID}/changes", changesHandler.ListByFamily)

	// Stories and documents
	storiesHandler := storiesfeature.NewHandler(db, logger)
	r.Mount("/stories", storiesfeature.Routes(storiesHandler))
	r.Get("/persons/{personID}/stories", storiesHandler.ListByPerson)

	documentsHandler := documentsfeature.NewHandler(db, deps.Blobs, logger)
	r.Mount("/documents", documentsfeature.Routes(documentsHandler))
	r.Get("/persons/{personID}/documents", documentsHandler.ListByPerson)

	// GEDCOM transfer
	gedcomHandler := gedcomfeature.NewHandler(db, logger)
	r.Mount("/families/{familyID}/gedcom", gedcomfeature.Routes(gedcomHandler))

	return r, nil
}
