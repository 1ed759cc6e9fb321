package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/optilog-connector/internal/domain/journal"
	"github.com/erp/optilog-connector/internal/domain/orders"
	"github.com/erp/optilog-connector/internal/domain/webhook"
	"github.com/erp/optilog-connector/internal/infrastructure/cache"
	"github.com/erp/optilog-connector/internal/infrastructure/optilog"
)

// fakeProvider is an in-memory ProviderAPI double
type fakeProvider struct {
	orders   map[string]*optilog.OrderDTO
	products map[string]*optilog.ProductDTO

	upsertedOrders   []*optilog.OrderDTO
	upsertedProducts []*optilog.ProductDTO
	deletedOrders    []string
	deletedSKUs      []string

	failAll bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		orders:   make(map[string]*optilog.OrderDTO),
		products: make(map[string]*optilog.ProductDTO),
	}
}

var errRemote = errors.New("remote unavailable")

func (f *fakeProvider) GetOrder(ctx context.Context, destID string) (*optilog.OrderDTO, error) {
	if f.failAll {
		return nil, errRemote
	}
	return f.orders[destID], nil
}

func (f *fakeProvider) UpsertOrder(ctx context.Context, order *optilog.OrderDTO) error {
	if f.failAll {
		return errRemote
	}
	f.upsertedOrders = append(f.upsertedOrders, order)
	return nil
}

func (f *fakeProvider) DeleteOrder(ctx context.Context, destID string) error {
	if f.failAll {
		return errRemote
	}
	f.deletedOrders = append(f.deletedOrders, destID)
	return nil
}

func (f *fakeProvider) GetProduct(ctx context.Context, id string) (*optilog.ProductDTO, error) {
	if f.failAll {
		return nil, errRemote
	}
	return f.products[id], nil
}

func (f *fakeProvider) UpsertProduct(ctx context.Context, product *optilog.ProductDTO) error {
	if f.failAll {
		return errRemote
	}
	f.upsertedProducts = append(f.upsertedProducts, product)
	return nil
}

func (f *fakeProvider) DeleteProduct(ctx context.Context, sku string) error {
	if f.failAll {
		return errRemote
	}
	f.deletedSKUs = append(f.deletedSKUs, sku)
	return nil
}

// fakeJournal records saved entries in memory
type fakeJournal struct {
	saved []*journal.SyncRecord
}

func (f *fakeJournal) Save(ctx context.Context, record *journal.SyncRecord) error {
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeJournal) FindByObject(ctx context.Context, objectType, objectID string) ([]*journal.SyncRecord, error) {
	return nil, nil
}

func (f *fakeJournal) List(ctx context.Context, filter journal.ListFilter, offset, limit int) ([]*journal.SyncRecord, int64, error) {
	return nil, 0, nil
}

func (f *fakeJournal) lastOutcome() journal.SyncOutcome {
	if len(f.saved) == 0 {
		return ""
	}
	return f.saved[len(f.saved)-1].Outcome
}

func newTestService(provider *fakeProvider, records *fakeJournal, debug bool) *ObjectSyncService {
	resolver := orders.NewCarrierResolver(nil, decimal.Zero, decimal.Zero, zap.NewNop())
	translator := orders.NewStatusTranslator(orders.VocabularyExtended)
	orderMapper := NewOrderMapper(OrderMapperConfig{Debug: debug}, resolver, translator, zap.NewNop())
	productMapper := NewProductMapper(zap.NewNop())
	return NewObjectSyncService(provider, records, nil, 0, orderMapper, productMapper, zap.NewNop())
}

func orderChange(action webhook.Action, destID string) *webhook.ChangeRecord {
	return &webhook.ChangeRecord{
		Action:     action,
		ObjectType: webhook.ObjectTypeOrder,
		ObjectID:   destID,
		User:       webhook.DefaultUser,
	}
}

func productChange(action webhook.Action, id, comment string) *webhook.ChangeRecord {
	return &webhook.ChangeRecord{
		Action:     action,
		ObjectType: webhook.ObjectTypeProduct,
		ObjectID:   id,
		User:       webhook.DefaultUser,
		Comment:    comment,
	}
}

func TestObjectSyncService_OrderUpdate(t *testing.T) {
	provider := newFakeProvider()
	status := 0
	provider.orders["CMD-1"] = &optilog.OrderDTO{
		ID: "984512", DestID: "CMD-1", Statut: &status, Transporteur: orders.CarrierColissimo,
	}
	records := &fakeJournal{}
	svc := newTestService(provider, records, false)

	err := svc.Commit(context.Background(), orderChange(webhook.ActionUpdate, "CMD-1"))

	require.NoError(t, err)
	require.Len(t, provider.upsertedOrders, 1)
	assert.Equal(t, "CMD-1", provider.upsertedOrders[0].DestID)
	assert.Equal(t, journal.OutcomeApplied, records.lastOutcome())
}

func TestObjectSyncService_OrderUpdate_GatedWrite(t *testing.T) {
	provider := newFakeProvider()
	status := 4 // shipped: too late for field changes
	provider.orders["CMD-1"] = &optilog.OrderDTO{ID: "984512", DestID: "CMD-1", Statut: &status}
	records := &fakeJournal{}
	svc := newTestService(provider, records, false)

	err := svc.Commit(context.Background(), orderChange(webhook.ActionUpdate, "CMD-1"))

	require.NoError(t, err)
	assert.Empty(t, provider.upsertedOrders, "gated write must not reach the provider")
	assert.Equal(t, journal.OutcomeSkipped, records.lastOutcome())
}

func TestObjectSyncService_OrderUpdate_UnknownRemote(t *testing.T) {
	provider := newFakeProvider()
	records := &fakeJournal{}
	svc := newTestService(provider, records, false)

	err := svc.Commit(context.Background(), orderChange(webhook.ActionUpdate, "CMD-404"))

	require.NoError(t, err)
	assert.Empty(t, provider.upsertedOrders)
	assert.Equal(t, journal.OutcomeSkipped, records.lastOutcome())
}

func TestObjectSyncService_OrderCreate_Rejected(t *testing.T) {
	// no carrier anywhere: admission must refuse and journal a skip
	provider := newFakeProvider()
	records := &fakeJournal{}
	svc := newTestService(provider, records, false)

	err := svc.Commit(context.Background(), orderChange(webhook.ActionCreate, "CMD-2"))

	require.NoError(t, err)
	assert.Empty(t, provider.upsertedOrders)
	assert.Equal(t, journal.OutcomeSkipped, records.lastOutcome())
}

func TestObjectSyncService_OrderDelete(t *testing.T) {
	provider := newFakeProvider()
	records := &fakeJournal{}
	svc := newTestService(provider, records, false)

	err := svc.Commit(context.Background(), orderChange(webhook.ActionDelete, "CMD-1"))

	require.NoError(t, err)
	assert.Equal(t, []string{"CMD-1"}, provider.deletedOrders)
	assert.Equal(t, journal.OutcomeApplied, records.lastOutcome())
}

func TestObjectSyncService_RemoteFailureIsSwallowed(t *testing.T) {
	provider := newFakeProvider()
	provider.failAll = true
	records := &fakeJournal{}
	svc := newTestService(provider, records, false)

	err := svc.Commit(context.Background(), orderChange(webhook.ActionUpdate, "CMD-1"))

	require.NoError(t, err, "remote failures never fail the batch")
	require.Len(t, records.saved, 1)
	assert.Equal(t, journal.OutcomeFailed, records.saved[0].Outcome)
	assert.NotEmpty(t, records.saved[0].ErrorMessage)
}

func TestObjectSyncService_ProductUpdate(t *testing.T) {
	provider := newFakeProvider()
	weight := decimal.NewFromFloat(0.25)
	provider.products["777"] = &optilog.ProductDTO{
		ID: "777", SKU: "TSHIRT-M", Libelle: "T-shirt M", Actif: true, Poids: &weight,
	}
	records := &fakeJournal{}
	svc := newTestService(provider, records, false)

	err := svc.Commit(context.Background(), productChange(webhook.ActionUpdate, "777", ""))

	require.NoError(t, err)
	require.Len(t, provider.upsertedProducts, 1)
	assert.Equal(t, "TSHIRT-M", provider.upsertedProducts[0].SKU)
	assert.Equal(t, journal.OutcomeApplied, records.lastOutcome())
}

func TestObjectSyncService_ProductRename(t *testing.T) {
	provider := newFakeProvider()
	provider.products["777"] = &optilog.ProductDTO{ID: "777", SKU: "NEW-SKU", Actif: true}
	records := &fakeJournal{}
	svc := newTestService(provider, records, false)

	err := svc.Commit(context.Background(), productChange(webhook.ActionUpdate, "777", "RefChange:OLD-SKU"))

	require.NoError(t, err)
	assert.Equal(t, []string{"OLD-SKU"}, provider.deletedSKUs, "old reference must be retired")
	require.Len(t, provider.upsertedProducts, 1)
	assert.Equal(t, "NEW-SKU", provider.upsertedProducts[0].SKU)
}

func TestObjectSyncService_ProductDelete(t *testing.T) {
	provider := newFakeProvider()
	provider.products["777"] = &optilog.ProductDTO{ID: "777", SKU: "TSHIRT-M"}
	records := &fakeJournal{}
	svc := newTestService(provider, records, false)

	err := svc.Commit(context.Background(), productChange(webhook.ActionDelete, "777", ""))

	require.NoError(t, err)
	assert.Equal(t, []string{"TSHIRT-M"}, provider.deletedSKUs)
}

func TestObjectSyncService_DuplicateSuppression(t *testing.T) {
	provider := newFakeProvider()
	status := 0
	provider.orders["CMD-1"] = &optilog.OrderDTO{ID: "984512", DestID: "CMD-1", Statut: &status}
	records := &fakeJournal{}

	dedup := cache.NewInMemoryDedupStore()
	defer func() { _ = dedup.Close() }()

	resolver := orders.NewCarrierResolver(nil, decimal.Zero, decimal.Zero, zap.NewNop())
	translator := orders.NewStatusTranslator(orders.VocabularyExtended)
	svc := NewObjectSyncService(provider, records, dedup, time.Minute,
		NewOrderMapper(OrderMapperConfig{}, resolver, translator, zap.NewNop()),
		NewProductMapper(zap.NewNop()), zap.NewNop())

	change := orderChange(webhook.ActionUpdate, "CMD-1")
	require.NoError(t, svc.Commit(context.Background(), change))
	require.NoError(t, svc.Commit(context.Background(), change))

	assert.Len(t, provider.upsertedOrders, 1, "second delivery must be suppressed")
	require.Len(t, records.saved, 2)
	assert.Equal(t, journal.OutcomeApplied, records.saved[0].Outcome)
	assert.Equal(t, journal.OutcomeSkipped, records.saved[1].Outcome)
}
