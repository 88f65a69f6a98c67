package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyama86/snowpanel/domain/entity"
	"github.com/pyama86/snowpanel/domain/repository"
)

func newIncidentRepo(t *testing.T, h http.Handler, retryCount uint) *repository.IncidentAPIRepository {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return repository.NewIncidentAPIRepository(srv.Client(), repository.APIConfig{
		BaseURL:       srv.URL,
		RetryCount:    retryCount,
		RetryInterval: time.Millisecond,
	})
}

func TestIncidents(t *testing.T) {
	repo := newIncidentRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/incidents", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":[{"sys_id":"abc","number":"INC001","impact":"1","urgency":"2","short_description":"printer down","priority":"2 - High"}]}`))
	}), 1)

	got, err := repo.Incidents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.Incident{{
		ID:               "abc",
		Number:           "INC001",
		Impact:           "1",
		Urgency:          "2",
		ShortDescription: "printer down",
		Priority:         "2 - High",
	}}, got)
}

func TestIncidentsEmptyResult(t *testing.T) {
	repo := newIncidentRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}), 1)

	got, err := repo.Incidents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestIncidentsSingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	repo := newIncidentRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), 0)

	_, err := repo.Incidents(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrRequestFailed))

	var reqErr *repository.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.Equal(t, "list", reqErr.Op)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIncidentsRetry(t *testing.T) {
	var calls atomic.Int32
	repo := newIncidentRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"result":[]}`))
	}), 3)

	got, err := repo.Incidents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCreateIncident(t *testing.T) {
	var body map[string]any
	repo := newIncidentRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/incidents", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":{"sys_id":"new","number":"INC010","short_description":"VPN outage"}}`))
	}), 1)

	inc, err := repo.CreateIncident(context.Background(), entity.Payload{Impact: 1, Urgency: 2, ShortDescription: "VPN outage"})
	require.NoError(t, err)
	require.NotNil(t, inc)
	assert.Equal(t, "new", inc.ID)
	assert.Equal(t, map[string]any{
		"impact":            float64(1),
		"urgency":           float64(2),
		"short_description": "VPN outage",
	}, body)
}

func TestUpdateIncidentBareResponse(t *testing.T) {
	repo := newIncidentRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/incidents/abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"sys_id":"abc","number":"INC001","short_description":"updated"}`))
	}), 1)

	inc, err := repo.UpdateIncident(context.Background(), "abc", entity.Payload{Impact: 3, Urgency: 3, ShortDescription: "updated"})
	require.NoError(t, err)
	require.NotNil(t, inc)
	assert.Equal(t, "updated", inc.ShortDescription)
}

func TestDeleteIncident(t *testing.T) {
	var path string
	repo := newIncidentRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		path = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}), 1)

	require.NoError(t, repo.DeleteIncident(context.Background(), "a/b"))
	assert.Equal(t, "/api/incidents/a%2Fb", path)
}

func TestMutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	repo := newIncidentRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), 5)

	_, err := repo.CreateIncident(context.Background(), entity.Payload{Impact: 1, Urgency: 1, ShortDescription: "x"})
	assert.ErrorIs(t, err, repository.ErrRequestFailed)
	err = repo.DeleteIncident(context.Background(), "abc")
	assert.ErrorIs(t, err, repository.ErrRequestFailed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	repo := repository.NewIncidentAPIRepository(http.DefaultClient, repository.APIConfig{BaseURL: srv.URL, RetryCount: 1})

	_, err := repo.Incidents(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrRequestFailed)

	var reqErr *repository.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.StatusCode)
	assert.NotNil(t, reqErr.Err)
}
