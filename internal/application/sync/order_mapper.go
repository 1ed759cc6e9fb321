// Package sync implements the field-mapping layer between the provider's
// wire records and the connector's canonical domain types, plus the object
// sync service that applies webhook changes against the provider.
package sync

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/erp/optilog-connector/internal/domain/orders"
	"github.com/erp/optilog-connector/internal/infrastructure/optilog"
)

// wireDateFormat is the provider's timestamp layout
const wireDateFormat = "2006-01-02 15:04:05"

// OrderMapperConfig holds the business settings the order mapper applies
type OrderMapperConfig struct {
	// Debug bypasses write gating and enables manual status overrides
	Debug bool
	// StatusOverrides forces a raw status per order business id while
	// Debug is on
	StatusOverrides map[string]int
	// MinOrderDate refuses creations older than this date (zero =
	// unconfigured)
	MinOrderDate time.Time
	// OriginRules maps an order origin to a carrier code. Mapping an
	// origin to the rejection sentinel refuses its orders outright.
	OriginRules map[string]string
}

// OrderMapper translates orders between wire and domain form and decides
// which writes the provider state still permits
type OrderMapper struct {
	cfg        OrderMapperConfig
	resolver   *orders.CarrierResolver
	translator *orders.StatusTranslator
	logger     *zap.Logger
}

// NewOrderMapper creates an order mapper
func NewOrderMapper(cfg OrderMapperConfig, resolver *orders.CarrierResolver, translator *orders.StatusTranslator, logger *zap.Logger) *OrderMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderMapper{
		cfg:        cfg,
		resolver:   resolver,
		translator: translator,
		logger:     logger.Named("order-mapper"),
	}
}

// EffectiveStatus returns the status the mapping rules should act on. In
// debug mode a configured override replaces the raw provider status.
func (m *OrderMapper) EffectiveStatus(o *orders.Order) (int, bool) {
	if m.cfg.Debug {
		if forced, ok := m.cfg.StatusOverrides[o.DestID]; ok {
			return forced, true
		}
	}
	return o.RawStatus()
}

// AllowUpdate decides whether the provider state still permits the write
// the order's mode asks for. Sentinel modes never write. Debug mode
// bypasses the status gating so operators can force a pass, with one
// exception: validation is refused outright while debug is on, so a
// forced status can never trigger a real validation at the provider.
func (m *OrderMapper) AllowUpdate(o *orders.Order) bool {
	if o.Mode.IsSentinel() {
		return false
	}

	status, set := m.EffectiveStatus(o)
	switch o.Mode {
	case orders.ModeAlter:
		// field changes are refused once preparation has started
		return m.cfg.Debug || !set || status <= orders.StatusCodeValidated
	case orders.ModeValidate:
		return !m.cfg.Debug && (!set || status <= orders.StatusCodeRegistered)
	case orders.ModeUnvalidate:
		// only a not-yet-validated order can be unvalidated
		return m.cfg.Debug || !set || status <= orders.StatusCodeRegistered
	case orders.ModeExpGo:
		// release requires a held or fully prepared order
		return m.cfg.Debug || (set &&
			(status == orders.StatusCodeAwaitingRelease ||
				status == orders.StatusCodePrepared))
	default:
		// NEW, DELETE and unrecognized modes are permitted
		return true
	}
}

// AdmitCreate applies the creation admission rules. On refusal the order
// is tagged with the rejection sentinel mode and the reason is returned;
// admission failures never surface as errors.
func (m *OrderMapper) AdmitCreate(o *orders.Order) (bool, string) {
	reject := func(reason string) (bool, string) {
		o.Mode = orders.ModeRejected
		m.logger.Warn("order creation refused",
			zap.String("dest_id", o.DestID),
			zap.String("reason", reason))
		return false, reason
	}

	if o.DestID == "" {
		return reject("missing business id")
	}

	if !m.cfg.MinOrderDate.IsZero() && !o.CreatedAt.IsZero() && o.CreatedAt.Before(m.cfg.MinOrderDate) {
		return reject(fmt.Sprintf("order predates %s", m.cfg.MinOrderDate.Format("2006-01-02")))
	}

	if rule, ok := m.cfg.OriginRules[o.Origin]; ok {
		if rule == orders.CarrierRejected {
			return reject(fmt.Sprintf("origin %q is refused", o.Origin))
		}
		if o.CarrierCode == "" {
			o.CarrierCode = rule
		}
	}

	resolved := m.resolver.Resolve(o.CarrierCode, o.Total)
	if resolved == "" || resolved == orders.CarrierRejected {
		return reject(fmt.Sprintf("no usable carrier for %q", o.CarrierCode))
	}
	o.CarrierCode = resolved

	return true, ""
}

// IsValid reports whether the order is live from the caller's point of
// view: validated or further along, and not returned
func (m *OrderMapper) IsValid(o *orders.Order) bool {
	status, set := m.EffectiveStatus(o)
	return set && status > orders.StatusCodeRegistered && status != orders.StatusCodeReturned
}

// IsCanceled reports whether the order is held back or withdrawn
func (m *OrderMapper) IsCanceled(o *orders.Order) bool {
	status, set := m.EffectiveStatus(o)
	return set && status <= orders.StatusCodeRegistered
}

// ShippedQuantities returns the shipped quantity per product reference.
// Normally this is summed from the provider's parcel records; in debug
// mode, where no real parcels exist, plausible quantities are synthesized
// from the effective status so downstream screens can be exercised.
func (m *OrderMapper) ShippedQuantities(o *orders.Order) map[string]int {
	if !m.cfg.Debug {
		shipped := make(map[string]int)
		for _, parcel := range o.Parcels {
			for _, content := range parcel.Contents {
				shipped[content.ProductRef] += content.Quantity
			}
		}
		return shipped
	}
	return m.synthesizeShipped(o)
}

func (m *OrderMapper) synthesizeShipped(o *orders.Order) map[string]int {
	shipped := make(map[string]int)
	status, set := m.EffectiveStatus(o)
	if !set {
		return shipped
	}

	canonical, known := m.translator.Translate(status)
	if !known {
		return shipped
	}

	for _, item := range o.Items {
		switch canonical {
		case orders.StatusDelivered, orders.StatusArchived:
			shipped[item.ProductRef] += item.Quantity
		case orders.StatusShipped, orders.StatusInTransit, orders.StatusAvailableAtPickup:
			// partially shipped: half the ordered quantity, at least one
			qty := item.Quantity / 2
			if qty == 0 && item.Quantity > 0 {
				qty = 1
			}
			shipped[item.ProductRef] += qty
		default:
			shipped[item.ProductRef] += 0
		}
	}
	return shipped
}

// ApplyRemote merges a provider order record into the domain order.
// Provider-owned fields (internal id, status, parcels) always win; caller
// fields that the provider echoes back are only filled when locally empty.
func (m *OrderMapper) ApplyRemote(o *orders.Order, dto *optilog.OrderDTO) {
	if dto == nil {
		return
	}
	o.InternalID = dto.ID
	if dto.Statut != nil {
		o.SetStatus(*dto.Statut)
	}
	if dto.Transporteur != "" {
		o.CarrierCode = dto.Transporteur
	}
	if o.Origin == "" {
		o.Origin = dto.Origine
	}
	if o.CreatedAt.IsZero() && dto.DateCreation != "" {
		if created, err := time.Parse(wireDateFormat, dto.DateCreation); err == nil {
			o.CreatedAt = created
		}
	}
	if len(dto.Articles) > 0 {
		o.Items = itemsFromWire(dto.Articles)
	}
	if dto.Adresse != nil {
		o.DeliveryAddress = addressFromWire(dto.Adresse)
	}
	o.Parcels = parcelsFromWire(dto.Colis)
}

// BuildPayload produces the outbound provider record for the order.
// Unset fields are omitted rather than sent as zero values.
func (m *OrderMapper) BuildPayload(o *orders.Order) *optilog.OrderDTO {
	dto := &optilog.OrderDTO{
		ID:           o.InternalID,
		DestID:       o.DestID,
		Transporteur: o.CarrierCode,
		Origine:      o.Origin,
		Articles:     itemsToWire(o.Items),
	}
	if status, set := m.EffectiveStatus(o); set {
		dto.Statut = &status
	}
	if !o.CreatedAt.IsZero() {
		dto.DateCreation = o.CreatedAt.Format(wireDateFormat)
	}
	if addr := addressToWire(o.DeliveryAddress); addr != nil {
		dto.Adresse = addr
	}
	return dto
}

// ---------------------------------------------------------------------------
// Wire conversion helpers
// ---------------------------------------------------------------------------

func itemsFromWire(articles []optilog.ArticleDTO) []orders.Item {
	items := make([]orders.Item, 0, len(articles))
	for _, a := range articles {
		items = append(items, orders.Item{
			ProductRef: a.Ref,
			Quantity:   a.Quantite,
			ExtraInfo:  [4]string{a.Info1, a.Info2, a.Info3, a.Info4},
		})
	}
	return items
}

func itemsToWire(items []orders.Item) []optilog.ArticleDTO {
	articles := make([]optilog.ArticleDTO, 0, len(items))
	for _, item := range items {
		articles = append(articles, optilog.ArticleDTO{
			Ref:      item.ProductRef,
			Quantite: item.Quantity,
			Info1:    item.ExtraInfo[0],
			Info2:    item.ExtraInfo[1],
			Info3:    item.ExtraInfo[2],
			Info4:    item.ExtraInfo[3],
		})
	}
	return articles
}

func addressFromWire(a *optilog.AdresseDTO) orders.Address {
	return orders.Address{
		ContactName: a.Nom,
		Company:     a.Societe,
		Line1:       a.Adresse1,
		Line2:       a.Adresse2,
		Line3:       a.Adresse3,
		ZipCode:     a.CodePostal,
		City:        a.Ville,
		CountryCode: a.Pays,
		Phone:       a.Tel,
		Mobile:      a.Mobile,
		Email:       a.Email,
		RelayID:     a.IDPointRelais,
	}
}

func addressToWire(a orders.Address) *optilog.AdresseDTO {
	if a == (orders.Address{}) {
		return nil
	}
	return &optilog.AdresseDTO{
		Nom:           a.ContactName,
		Societe:       a.Company,
		Adresse1:      a.Line1,
		Adresse2:      a.Line2,
		Adresse3:      a.Line3,
		CodePostal:    a.ZipCode,
		Ville:         a.City,
		Pays:          a.CountryCode,
		Tel:           a.Phone,
		Mobile:        a.Mobile,
		Email:         a.Email,
		IDPointRelais: a.RelayID,
	}
}

func parcelsFromWire(colis []optilog.ColisDTO) []orders.Parcel {
	if len(colis) == 0 {
		return nil
	}
	parcels := make([]orders.Parcel, 0, len(colis))
	for _, c := range colis {
		contents := make([]orders.ParcelContent, 0, len(c.Contenu))
		for _, ligne := range c.Contenu {
			contents = append(contents, orders.ParcelContent{
				ProductRef: ligne.Ref,
				Quantity:   ligne.Quantite,
			})
		}
		parcels = append(parcels, orders.Parcel{
			Status:         c.Statut,
			TrackingNumber: c.NoSuivi,
			WeightGrams:    c.Poids,
			Contents:       contents,
		})
	}
	return parcels
}
