// Package webhook implements the inbound change-notification batch
// processor: authentication, ping handling, payload decoding and
// per-event dispatch to the sync layer.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	domainwebhook "github.com/erp/optilog-connector/internal/domain/webhook"
)

// Ping literals and response messages of the provider contract. These are
// wire constants; wording and casing must not change.
const (
	pingPlain  = "HelloWorld"
	pingSecure = "HelloWorldSecure"

	msgHelloPlain  = "Hello World"
	msgHelloSecure = "Hello Optilog !!"
	msgRefused     = "Connection Refused"
	msgMissingData = "Malformatted or Missing Data"
	msgBadPayload  = "Unable to Deserialize Data"
	msgNotifiedFmt = "Notified %d Changes"
)

// Committer applies one validated change against the logistics provider.
// A non-nil error means the change was not applied and must not be counted.
type Committer interface {
	Commit(ctx context.Context, change *domainwebhook.ChangeRecord) error
}

// Result is the outcome of one webhook delivery
type Result struct {
	// OK maps to statut 1 on the wire
	OK      bool
	Message string
	// Committed is the number of changes the committer accepted
	Committed int
}

// Processor handles one webhook delivery end to end
type Processor struct {
	apiKey    string
	committer Committer
	logger    *zap.Logger
}

// NewProcessor creates a webhook processor. An empty apiKey disables the
// endpoint: every authenticated request is refused.
func NewProcessor(apiKey string, committer Committer, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		apiKey:    apiKey,
		committer: committer,
		logger:    logger.Named("webhook"),
	}
}

// Handle processes one delivery. clef is the shared secret presented by the
// caller; payload is the raw Event form field, nil when the field is absent.
//
// The plain ping is answered before authentication so the provider can
// probe the endpoint without credentials. Everything after it requires the
// shared secret.
func (p *Processor) Handle(ctx context.Context, clef string, payload *string) Result {
	if payload == nil {
		return Result{OK: false, Message: msgMissingData}
	}

	if *payload == pingPlain {
		return Result{OK: true, Message: msgHelloPlain}
	}

	if !p.authorized(clef) {
		p.logger.Warn("delivery refused: bad or missing key")
		return Result{OK: false, Message: msgRefused}
	}

	if *payload == pingSecure {
		return Result{OK: true, Message: msgHelloSecure}
	}

	var events []map[string]any
	if err := json.Unmarshal([]byte(*payload), &events); err != nil {
		p.logger.Warn("delivery rejected: undecodable payload", zap.Error(err))
		return Result{OK: false, Message: msgBadPayload}
	}

	committed := 0
	for i, raw := range events {
		change, err := domainwebhook.Decode(raw)
		if err != nil {
			// a bad event is skipped, never aborts the batch
			p.logger.Warn("skipping invalid event",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}

		if err := p.committer.Commit(ctx, change); err != nil {
			p.logger.Error("commit failed",
				zap.String("change", change.Key()),
				zap.Error(err))
			continue
		}
		committed++
	}

	p.logger.Info("delivery processed",
		zap.Int("events", len(events)),
		zap.Int("committed", committed))

	return Result{
		OK:        true,
		Message:   fmt.Sprintf(msgNotifiedFmt, committed),
		Committed: committed,
	}
}

// authorized checks the shared secret in constant time. An empty configured
// key never matches, not even an empty presented key.
func (p *Processor) authorized(clef string) bool {
	if p.apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(clef), []byte(p.apiKey)) == 1
}
