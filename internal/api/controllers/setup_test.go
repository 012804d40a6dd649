package controllers_test

import (
	"github.com/marine-watch/backend/internal/api/controllers"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/testutil"
)

// setupAPI wires the full controller surface against the test database. The
// classifier and Kafka integrations stay unset, mirroring a deployment where
// those sidecars are down.
func setupAPI(ts *testutil.TestSetup) *repository.RepositoryFactory {
	ts.SetupMarineDatabase()

	repos := repository.NewRepositoryFactory(ts.DB.DB)
	metricsService := services.NewMetricsService(repos, &ts.Config.Scoring, ts.Logger)
	sustainabilityService := services.NewSustainabilityService(repos, &ts.Config.Scoring, ts.Logger)
	fisheriesService := services.NewFisheriesService(repos, &ts.Config.Scoring, ts.Logger)
	oceanService := services.NewOceanService(repos, &ts.Config.Scoring, nil, ts.Logger)
	speciesService := services.NewSpeciesService(repos, nil, nil, ts.Logger)
	alertRuleService := services.NewAlertRuleService(repos, &ts.Config.Scoring, nil, nil, ts.Logger)

	v1 := ts.Router.Group("/api/v1")
	controllers.NewMetricsController(metricsService, sustainabilityService, ts.Logger).RegisterRoutes(v1)
	controllers.NewSpeciesController(speciesService, ts.Logger).RegisterRoutes(v1.Group("/species"))
	controllers.NewFisheriesController(fisheriesService, ts.Logger).RegisterRoutes(v1.Group("/fisheries"))
	controllers.NewOceanController(oceanService, ts.Logger).RegisterRoutes(v1.Group("/ocean"))
	controllers.NewAlertsController(alertRuleService, ts.Logger).RegisterRoutes(v1.Group("/alerts"))

	return repos
}

func ptr(v float64) *float64 { return &v }
