package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/testutil"
	"github.com/marine-watch/backend/internal/utils"
)

func TestAlertsAPI_EvaluateAndResolve(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	repos := setupAPI(ts)

	// a risky region triggers the biodiversity rule
	require.NoError(t, repos.Biodiversity().Create(&models.BiodiversityAssessment{
		RegionName:        "Coral Triangle",
		BiodiversityScore: ptr(20),
		AssessedAt:        time.Now().UTC().AddDate(0, 0, -1),
	}))

	resp := ts.ExecuteRequest(http.MethodPost, "/api/v1/alerts/evaluate", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var run services.RuleRunResult
	ts.ParseResponse(resp, &run)
	require.Len(t, run.Created, 1)
	assert.Equal(t, models.AlertBiodiversityRisk, run.Created[0].AlertType)
	assert.Equal(t, models.SeverityCritical, run.Created[0].Severity)

	// the alert shows up in the active listing
	resp = ts.ExecuteRequest(http.MethodGet, "/api/v1/alerts?active=true", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var page struct {
		Data       []models.Alert   `json:"data"`
		Pagination utils.Pagination `json:"pagination"`
	}
	ts.ParseResponse(resp, &page)
	require.Len(t, page.Data, 1)

	// resolve it
	resp = ts.ExecuteRequest(http.MethodPost, fmt.Sprintf("/api/v1/alerts/%d/resolve", run.Created[0].ID), nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var resolved models.Alert
	ts.ParseResponse(resp, &resolved)
	assert.False(t, resolved.IsActive)
	assert.NotNil(t, resolved.ResolvedAt)

	// resolving again is a 404
	resp = ts.ExecuteRequest(http.MethodPost, fmt.Sprintf("/api/v1/alerts/%d/resolve", run.Created[0].ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// and the active listing is empty again
	resp = ts.ExecuteRequest(http.MethodGet, "/api/v1/alerts?active=true", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	ts.ParseResponse(resp, &page)
	assert.Empty(t, page.Data)
}

func TestAlertsAPI_ListFilters(t *testing.T) {
	ts := testutil.NewTestSetup(t)
	defer ts.Cleanup()
	repos := setupAPI(ts)

	seed := []models.Alert{
		{AlertType: models.AlertOverfishing, Severity: models.SeverityHigh, Title: "a", Location: "North Sea", SubjectKey: "Gadus morhua", IsActive: true},
		{AlertType: models.AlertBiodiversityRisk, Severity: models.SeverityCritical, Title: "b", Location: "Coral Triangle", IsActive: true},
	}
	for i := range seed {
		require.NoError(t, repos.Alert().Create(&seed[i]))
	}

	resp := ts.ExecuteRequest(http.MethodGet, "/api/v1/alerts?severity=critical", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var page struct {
		Data []models.Alert `json:"data"`
	}
	ts.ParseResponse(resp, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, models.AlertBiodiversityRisk, page.Data[0].AlertType)

	t.Run("malformed id", func(t *testing.T) {
		resp := ts.ExecuteRequest(http.MethodPost, "/api/v1/alerts/bogus/resolve", nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
