package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/optilog-connector/internal/domain/journal"
)

type stubSyncRecords struct {
	records    []*journal.SyncRecord
	total      int64
	lastFilter journal.ListFilter
	lastOffset int
	lastLimit  int
	err        error
}

func (s *stubSyncRecords) Save(_ context.Context, _ *journal.SyncRecord) error { return nil }

func (s *stubSyncRecords) FindByObject(_ context.Context, _, _ string) ([]*journal.SyncRecord, error) {
	return nil, nil
}

func (s *stubSyncRecords) List(_ context.Context, filter journal.ListFilter, offset, limit int) ([]*journal.SyncRecord, int64, error) {
	s.lastFilter = filter
	s.lastOffset = offset
	s.lastLimit = limit
	return s.records, s.total, s.err
}

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

func newSyncEngine(records *stubSyncRecords, pinger *stubPinger) *gin.Engine {
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewSyncHandler(records, pinger).RegisterRoutes(api)
	return engine
}

func TestListRecords(t *testing.T) {
	record := journal.NewSyncRecord("Order", "ORD-1", "UPDATE", "ops", "comment", journal.OutcomeApplied, "")
	records := &stubSyncRecords{records: []*journal.SyncRecord{record}, total: 1}
	engine := newSyncEngine(records, &stubPinger{})

	req := httptest.NewRequest("GET", "/api/v1/sync/records?object_type=Order&outcome=applied&page=2&page_size=10", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Order", records.lastFilter.ObjectType)
	assert.Equal(t, journal.OutcomeApplied, records.lastFilter.Outcome)
	assert.Equal(t, 10, records.lastOffset)
	assert.Equal(t, 10, records.lastLimit)

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			ObjectID string `json:"object_id"`
			Outcome  string `json:"outcome"`
		} `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
			Page  int   `json:"page"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ORD-1", body.Data[0].ObjectID)
	assert.Equal(t, "applied", body.Data[0].Outcome)
	assert.Equal(t, int64(1), body.Meta.Total)
	assert.Equal(t, 2, body.Meta.Page)
}

func TestListRecords_SinceFilter(t *testing.T) {
	records := &stubSyncRecords{}
	engine := newSyncEngine(records, &stubPinger{})

	req := httptest.NewRequest("GET", "/api/v1/sync/records?since=2026-08-01", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, records.lastFilter.Since)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *records.lastFilter.Since)
}

func TestListRecords_InvalidQuery(t *testing.T) {
	engine := newSyncEngine(&stubSyncRecords{}, &stubPinger{})

	req := httptest.NewRequest("GET", "/api/v1/sync/records?outcome=bogus", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid query parameters")
}

func TestListRecords_RepositoryError(t *testing.T) {
	records := &stubSyncRecords{err: errors.New("db down")}
	engine := newSyncEngine(records, &stubPinger{})

	req := httptest.NewRequest("GET", "/api/v1/sync/records", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSelfTest(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		engine := newSyncEngine(&stubSyncRecords{}, &stubPinger{})

		req := httptest.NewRequest("GET", "/api/v1/sync/selftest", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"reachable":true`)
	})

	t.Run("unreachable", func(t *testing.T) {
		engine := newSyncEngine(&stubSyncRecords{}, &stubPinger{err: errors.New("connection refused")})

		req := httptest.NewRequest("GET", "/api/v1/sync/selftest", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"reachable":false`)
		assert.Contains(t, w.Body.String(), "connection refused")
	})
}
