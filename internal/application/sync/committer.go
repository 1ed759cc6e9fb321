package sync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/erp/optilog-connector/internal/domain/journal"
	"github.com/erp/optilog-connector/internal/domain/orders"
	"github.com/erp/optilog-connector/internal/domain/products"
	"github.com/erp/optilog-connector/internal/domain/shared"
	"github.com/erp/optilog-connector/internal/domain/webhook"
	"github.com/erp/optilog-connector/internal/infrastructure/optilog"
	"github.com/erp/optilog-connector/internal/infrastructure/telemetry"
)

// ProviderAPI is the subset of the provider client the sync service needs
type ProviderAPI interface {
	GetOrder(ctx context.Context, destID string) (*optilog.OrderDTO, error)
	UpsertOrder(ctx context.Context, order *optilog.OrderDTO) error
	DeleteOrder(ctx context.Context, destID string) error
	GetProduct(ctx context.Context, id string) (*optilog.ProductDTO, error)
	UpsertProduct(ctx context.Context, product *optilog.ProductDTO) error
	DeleteProduct(ctx context.Context, sku string) error
}

var _ ProviderAPI = (*optilog.Client)(nil)

// ObjectSyncService applies validated webhook changes against the provider
// and records every outcome in the sync journal. Remote failures are
// journaled and swallowed: one failing object must not fail the batch.
type ObjectSyncService struct {
	api           ProviderAPI
	records       journal.SyncRecordRepository
	dedup         shared.IdempotencyStore
	dedupTTL      time.Duration
	orderMapper   *OrderMapper
	productMapper *ProductMapper
	logger        *zap.Logger
}

// NewObjectSyncService creates the sync service. dedup may be nil, in
// which case re-delivered changes are re-applied.
func NewObjectSyncService(
	api ProviderAPI,
	records journal.SyncRecordRepository,
	dedup shared.IdempotencyStore,
	dedupTTL time.Duration,
	orderMapper *OrderMapper,
	productMapper *ProductMapper,
	logger *zap.Logger,
) *ObjectSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectSyncService{
		api:           api,
		records:       records,
		dedup:         dedup,
		dedupTTL:      dedupTTL,
		orderMapper:   orderMapper,
		productMapper: productMapper,
		logger:        logger.Named("sync"),
	}
}

// Commit applies one change. It always returns nil: every change that
// reached this point counts as notified, whatever happens against the
// provider. The journal carries the real outcome.
func (s *ObjectSyncService) Commit(ctx context.Context, change *webhook.ChangeRecord) error {
	ctx, span := telemetry.StartSpan(ctx, "sync.commit")
	defer span.End()

	if s.suppressed(ctx, change) {
		s.journal(ctx, change, journal.OutcomeSkipped, "duplicate delivery")
		return nil
	}

	var (
		outcome journal.SyncOutcome
		detail  string
	)
	switch change.ObjectType {
	case webhook.ObjectTypeOrder:
		outcome, detail = s.syncOrder(ctx, change)
	case webhook.ObjectTypeProduct:
		outcome, detail = s.syncProduct(ctx, change)
	default:
		// unreachable: the decoder only emits the two known types
		outcome, detail = journal.OutcomeSkipped, "unknown object type"
	}

	switch outcome {
	case journal.OutcomeFailed:
		telemetry.RecordError(span, errors.New(detail))
		s.logger.Error("change not applied",
			zap.String("change", change.Key()),
			zap.String("error", detail))
	case journal.OutcomeSkipped:
		s.logger.Info("change skipped",
			zap.String("change", change.Key()),
			zap.String("reason", detail))
	default:
		s.logger.Debug("change applied", zap.String("change", change.Key()))
	}

	s.journal(ctx, change, outcome, detail)
	return nil
}

// suppressed checks the duplicate-suppression store. A store failure only
// disables suppression for this change.
func (s *ObjectSyncService) suppressed(ctx context.Context, change *webhook.ChangeRecord) bool {
	if s.dedup == nil {
		return false
	}
	fresh, err := s.dedup.MarkProcessed(ctx, change.Key(), s.dedupTTL)
	if err != nil {
		s.logger.Warn("duplicate suppression unavailable", zap.Error(err))
		return false
	}
	return !fresh
}

func (s *ObjectSyncService) journal(ctx context.Context, change *webhook.ChangeRecord, outcome journal.SyncOutcome, detail string) {
	errMsg := ""
	if outcome == journal.OutcomeFailed {
		errMsg = detail
	}
	record := journal.NewSyncRecord(
		string(change.ObjectType),
		change.ObjectID,
		string(change.Action),
		change.User,
		change.Comment,
		outcome,
		errMsg,
	)
	if err := s.records.Save(ctx, record); err != nil {
		s.logger.Error("failed to journal change",
			zap.String("change", change.Key()),
			zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func (s *ObjectSyncService) syncOrder(ctx context.Context, change *webhook.ChangeRecord) (journal.SyncOutcome, string) {
	if change.Action == webhook.ActionDelete {
		if err := s.api.DeleteOrder(ctx, change.ObjectID); err != nil {
			return journal.OutcomeFailed, err.Error()
		}
		return journal.OutcomeApplied, ""
	}

	remote, err := s.api.GetOrder(ctx, change.ObjectID)
	if err != nil {
		return journal.OutcomeFailed, err.Error()
	}

	order := &orders.Order{DestID: change.ObjectID}
	switch change.Action {
	case webhook.ActionCreate:
		order.Mode = orders.ModeNew
	default:
		order.Mode = orders.ModeAlter
	}
	s.orderMapper.ApplyRemote(order, remote)

	if remote == nil {
		if change.Action != webhook.ActionCreate {
			return journal.OutcomeSkipped, "order unknown at provider"
		}
		if ok, reason := s.orderMapper.AdmitCreate(order); !ok {
			return journal.OutcomeSkipped, reason
		}
	} else if !s.orderMapper.AllowUpdate(order) {
		return journal.OutcomeSkipped, "provider state forbids the write"
	}

	if err := s.api.UpsertOrder(ctx, s.orderMapper.BuildPayload(order)); err != nil {
		return journal.OutcomeFailed, err.Error()
	}
	return journal.OutcomeApplied, ""
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

func (s *ObjectSyncService) syncProduct(ctx context.Context, change *webhook.ChangeRecord) (journal.SyncOutcome, string) {
	remote, err := s.api.GetProduct(ctx, change.ObjectID)
	if err != nil {
		return journal.OutcomeFailed, err.Error()
	}

	if change.Action == webhook.ActionDelete {
		if remote == nil {
			return journal.OutcomeSkipped, "product unknown at provider"
		}
		if err := s.api.DeleteProduct(ctx, remote.SKU); err != nil {
			return journal.OutcomeFailed, err.Error()
		}
		return journal.OutcomeApplied, ""
	}

	if remote == nil {
		return journal.OutcomeSkipped, "product unknown at provider"
	}

	// a rename retires the article filed under the previous reference
	if oldSKU, ok := s.productMapper.RenamedFrom(change.Comment); ok && oldSKU != remote.SKU {
		if err := s.api.DeleteProduct(ctx, oldSKU); err != nil {
			return journal.OutcomeFailed, err.Error()
		}
	}

	product := &products.Product{}
	s.productMapper.ApplyRemote(product, remote)

	if err := s.api.UpsertProduct(ctx, s.productMapper.BuildPayload(product)); err != nil {
		return journal.OutcomeFailed, err.Error()
	}
	return journal.OutcomeApplied, ""
}
