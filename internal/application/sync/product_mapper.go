package sync

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/optilog-connector/internal/domain/products"
	"github.com/erp/optilog-connector/internal/infrastructure/optilog"
)

// renameCommentPrefix marks a change comment that announces a SKU rename.
// The provider sends "RefChange:<old-sku>" so the connector can retire the
// article filed under the previous reference.
const renameCommentPrefix = "RefChange:"

// Conversion factors between connector units (grams, millimetres) and
// provider units (kilograms, centimetres)
var (
	gramsPerKilogram         = decimal.NewFromInt(1000)
	millimetresPerCentimetre = decimal.NewFromInt(10)
)

// ProductMapper translates products between wire and domain form
type ProductMapper struct {
	logger *zap.Logger
}

// NewProductMapper creates a product mapper
func NewProductMapper(logger *zap.Logger) *ProductMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductMapper{logger: logger.Named("product-mapper")}
}

// RenamedFrom extracts the previous SKU from a rename announcement comment
func (m *ProductMapper) RenamedFrom(comment string) (string, bool) {
	if !strings.HasPrefix(comment, renameCommentPrefix) {
		return "", false
	}
	old := strings.TrimSpace(strings.TrimPrefix(comment, renameCommentPrefix))
	if old == "" {
		return "", false
	}
	return old, true
}

// ApplyRemote merges a provider product record into the domain product,
// converting provider units back to connector units
func (m *ProductMapper) ApplyRemote(p *products.Product, dto *optilog.ProductDTO) {
	if dto == nil {
		return
	}
	p.InternalID = dto.ID
	if dto.SKU != "" {
		p.SKU = dto.SKU
	}
	if dto.Libelle != "" {
		p.Label = dto.Libelle
	}
	p.Active = dto.Actif

	if dto.Poids != nil {
		p.WeightGrams = int(dto.Poids.Mul(gramsPerKilogram).IntPart())
	}
	if dto.Hauteur != nil {
		p.HeightMM = int(dto.Hauteur.Mul(millimetresPerCentimetre).IntPart())
	}
	if dto.Longueur != nil {
		p.LengthMM = int(dto.Longueur.Mul(millimetresPerCentimetre).IntPart())
	}
	if dto.Largeur != nil {
		p.WidthMM = int(dto.Largeur.Mul(millimetresPerCentimetre).IntPart())
	}

	// stock is provider-owned, always taken as-is
	p.StockAvailable = dto.StockDispo
	p.StockPhysical = dto.StockPhysique
	p.StockOnOrder = dto.StockCommande

	if dto.PrixVente != nil {
		p.PriceSell = *dto.PrixVente
	}
	if dto.PrixAchat != nil {
		p.PriceBuy = *dto.PrixAchat
	}
}

// BuildPayload produces the outbound provider record for the product.
// Weights go out in kilograms and dimensions in centimetres; unset
// measurements are omitted so the provider keeps its own values.
func (m *ProductMapper) BuildPayload(p *products.Product) *optilog.ProductDTO {
	dto := &optilog.ProductDTO{
		ID:      p.InternalID,
		SKU:     p.SKU,
		Libelle: p.Label,
		Actif:   p.Active,

		StockDispo:    p.StockAvailable,
		StockPhysique: p.StockPhysical,
		StockCommande: p.StockOnOrder,
	}

	if kg, set := p.WeightKilograms(); set {
		dto.Poids = &kg
	}
	if height, length, width, set := p.DimensionsCentimetres(); set {
		if p.HeightMM != 0 {
			dto.Hauteur = &height
		}
		if p.LengthMM != 0 {
			dto.Longueur = &length
		}
		if p.WidthMM != 0 {
			dto.Largeur = &width
		}
	}
	if !p.PriceSell.IsZero() {
		price := p.PriceSell
		dto.PrixVente = &price
	}
	if !p.PriceBuy.IsZero() {
		price := p.PriceBuy
		dto.PrixAchat = &price
	}
	return dto
}
