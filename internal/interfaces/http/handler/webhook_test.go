package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appwebhook "github.com/erp/optilog-connector/internal/application/webhook"
	"github.com/erp/optilog-connector/internal/domain/webhook"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type captureCommitter struct {
	mu      sync.Mutex
	records []*webhook.ChangeRecord
}

func (c *captureCommitter) Commit(_ context.Context, record *webhook.ChangeRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
	return nil
}

func newWebhookEngine(apiKey string) (*gin.Engine, *captureCommitter) {
	committer := &captureCommitter{}
	processor := appwebhook.NewProcessor(apiKey, committer, zap.NewNop())

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	api := engine.Group("/api/v1")
	NewWebhookHandler(processor).RegisterRoutes(api)
	return engine, committer
}

func postWebhook(t *testing.T, engine *gin.Engine, clef string, event *string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	if event != nil {
		form.Set("Event", *event)
	}

	req := httptest.NewRequest("POST", "/api/v1/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if clef != "" {
		req.Header.Set("Clef", clef)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeStatut(t *testing.T, w *httptest.ResponseRecorder) (int, string) {
	t.Helper()

	var body struct {
		Statut     int    `json:"statut"`
		StatutText string `json:"statutText"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Statut, body.StatutText
}

func strptr(s string) *string { return &s }

func TestWebhookReceive_MissingEventField(t *testing.T) {
	engine, _ := newWebhookEngine("secret")

	w := postWebhook(t, engine, "secret", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	statut, text := decodeStatut(t, w)
	assert.Equal(t, 0, statut)
	assert.Equal(t, "Malformatted or Missing Data", text)
}

func TestWebhookReceive_PlainPingNeedsNoKey(t *testing.T) {
	engine, _ := newWebhookEngine("secret")

	w := postWebhook(t, engine, "", strptr("HelloWorld"))

	assert.Equal(t, http.StatusOK, w.Code)
	statut, text := decodeStatut(t, w)
	assert.Equal(t, 1, statut)
	assert.Equal(t, "Hello World", text)
}

func TestWebhookReceive_SecurePing(t *testing.T) {
	engine, _ := newWebhookEngine("secret")

	t.Run("valid key", func(t *testing.T) {
		w := postWebhook(t, engine, "secret", strptr("HelloWorldSecure"))

		statut, text := decodeStatut(t, w)
		assert.Equal(t, 1, statut)
		assert.Equal(t, "Hello Optilog !!", text)
	})

	t.Run("wrong key refused", func(t *testing.T) {
		w := postWebhook(t, engine, "wrong", strptr("HelloWorldSecure"))

		assert.Equal(t, http.StatusOK, w.Code)
		statut, text := decodeStatut(t, w)
		assert.Equal(t, 0, statut)
		assert.Equal(t, "Connection Refused", text)
	})
}

func TestWebhookReceive_BadPayload(t *testing.T) {
	engine, _ := newWebhookEngine("secret")

	w := postWebhook(t, engine, "secret", strptr("this is not json"))

	statut, text := decodeStatut(t, w)
	assert.Equal(t, 0, statut)
	assert.Equal(t, "Unable to Deserialize Data", text)
}

func TestWebhookReceive_Batch(t *testing.T) {
	engine, committer := newWebhookEngine("secret")

	event := `[
		{"Mode":"CREATE","Type":"CMD","DestID":"ORD-1","User":"ops"},
		{"Mode":"UPDATE","Type":"STK","ID":"SKU-9"}
	]`
	w := postWebhook(t, engine, "secret", strptr(event))

	statut, text := decodeStatut(t, w)
	assert.Equal(t, 1, statut)
	assert.Equal(t, "Notified 2 Changes", text)
	require.Len(t, committer.records, 2)
	assert.Equal(t, "ORD-1", committer.records[0].ObjectID)
	assert.Equal(t, webhook.ObjectTypeOrder, committer.records[0].ObjectType)
	assert.Equal(t, "ops", committer.records[0].User)
	assert.Equal(t, "SKU-9", committer.records[1].ObjectID)
	assert.Equal(t, webhook.DefaultUser, committer.records[1].User)
}

func TestWebhookReceive_EmptyEventValue(t *testing.T) {
	// an empty Event value is present but undecodable, which is
	// distinct from the field being absent
	engine, _ := newWebhookEngine("secret")

	w := postWebhook(t, engine, "secret", strptr(""))

	statut, text := decodeStatut(t, w)
	assert.Equal(t, 0, statut)
	assert.Equal(t, "Unable to Deserialize Data", text)
}

func TestWebhookReceive_InvalidEventsSkipped(t *testing.T) {
	engine, committer := newWebhookEngine("secret")

	// missing Mode drops the event without failing the batch
	event := `[{"Type":"STK","ID":"SKU1","User":"u","Comment":"c"}]`
	w := postWebhook(t, engine, "secret", strptr(event))

	statut, text := decodeStatut(t, w)
	assert.Equal(t, 1, statut)
	assert.Equal(t, "Notified 0 Changes", text)
	assert.Empty(t, committer.records)
}

func TestWebhookReceive_MethodNotAllowed(t *testing.T) {
	engine, _ := newWebhookEngine("secret")

	req := httptest.NewRequest("GET", "/api/v1/webhook", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
