package orders

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Provider carrier codes. CarrierRejected is not a real carrier: it marks an
// order that must never be shipped.
const (
	CarrierColissimo      = "COLD"
	CarrierColissimoRelay = "COLR"
	CarrierChronopost     = "CHRD"
	CarrierChronoRelay    = "CHRR"
	CarrierMondialRelay   = "MONR"
	CarrierUPS            = "UPSS"
	CarrierDHL            = "DHLE"
	CarrierLetter         = "LETT"
	CarrierAutoStandard   = "AUTO_STD"
	CarrierAutoExpress    = "AUTO_EXP"
	CarrierRejected       = "REJECTED"
)

// carrierLabels enumerates every valid carrier code with its display label,
// consumed by form builders through CarrierChoices
var carrierLabels = map[string]string{
	CarrierColissimo:      "Colissimo domicile",
	CarrierColissimoRelay: "Colissimo point retrait",
	CarrierChronopost:     "Chronopost",
	CarrierChronoRelay:    "Chrono Relais",
	CarrierMondialRelay:   "Mondial Relay",
	CarrierUPS:            "UPS Standard",
	CarrierDHL:            "DHL Express",
	CarrierLetter:         "Lettre suivie",
	CarrierAutoStandard:   "Choix automatique (standard)",
	CarrierAutoExpress:    "Choix automatique (express)",
	CarrierRejected:       "Commande rejetée",
}

var relayCarriers = map[string]bool{
	CarrierColissimoRelay: true,
	CarrierChronoRelay:    true,
	CarrierMondialRelay:   true,
}

var customCarriers = map[string]bool{
	CarrierAutoStandard: true,
	CarrierAutoExpress:  true,
}

// IsKnownCarrier returns true if the code is in the fixed carrier enumeration
func IsKnownCarrier(code string) bool {
	_, ok := carrierLabels[code]
	return ok
}

// IsRelayCarrier returns true for carriers delivering to a pickup point
func IsRelayCarrier(code string) bool {
	return relayCarriers[code]
}

// IsCustomCarrier returns true for the value-resolved sentinel codes
func IsCustomCarrier(code string) bool {
	return customCarriers[code]
}

// CarrierChoices returns the label-to-code map used by UI enumeration
func CarrierChoices() map[string]string {
	choices := make(map[string]string, len(carrierLabels))
	for code, label := range carrierLabels {
		choices[label] = code
	}
	return choices
}

// CarrierResolver maps human-readable carrier names to provider carrier
// codes and applies the value-based rules behind the custom sentinel codes.
type CarrierResolver struct {
	// names maps display names (as configured by operators) to codes
	names map[string]string
	// stdThreshold switches AUTO_STD between tracked letter and Colissimo
	stdThreshold decimal.Decimal
	// expThreshold switches AUTO_EXP between Colissimo and Chronopost
	expThreshold decimal.Decimal
	logger       *zap.Logger
}

// NewCarrierResolver creates a resolver. Zero thresholds fall back to the
// defaults (25.00 and 300.00).
func NewCarrierResolver(names map[string]string, stdThreshold, expThreshold decimal.Decimal, logger *zap.Logger) *CarrierResolver {
	if names == nil {
		names = map[string]string{}
	}
	if stdThreshold.IsZero() {
		stdThreshold = decimal.NewFromInt(25)
	}
	if expThreshold.IsZero() {
		expThreshold = decimal.NewFromInt(300)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CarrierResolver{
		names:        names,
		stdThreshold: stdThreshold,
		expThreshold: expThreshold,
		logger:       logger,
	}
}

// Resolve maps a carrier name to a provider code. orderTotal feeds the
// custom sentinel rules; when it is nil a custom code passes through
// unresolved. Returns "" when no valid code can be produced.
func (r *CarrierResolver) Resolve(carrierName string, orderTotal *decimal.Decimal) string {
	name := strings.TrimSpace(carrierName)
	if name == "" {
		return ""
	}

	// A configured name maps to its code; anything else is assumed to
	// already be a code.
	code := name
	if mapped, ok := r.names[name]; ok {
		code = mapped
	}

	if IsCustomCarrier(code) && orderTotal != nil {
		code = r.applyCustomRule(code, *orderTotal)
	}

	if !IsKnownCarrier(code) {
		r.logger.Warn("Unknown carrier code",
			zap.String("carrier_name", carrierName),
			zap.String("resolved_code", code),
		)
		return ""
	}
	return code
}

// applyCustomRule resolves a custom sentinel code against the order total:
// low-value orders go out with the cheaper carrier, high-value orders with
// the tracked one.
func (r *CarrierResolver) applyCustomRule(code string, total decimal.Decimal) string {
	switch code {
	case CarrierAutoStandard:
		if total.LessThan(r.stdThreshold) {
			return CarrierLetter
		}
		return CarrierColissimo
	case CarrierAutoExpress:
		if total.LessThan(r.expThreshold) {
			return CarrierColissimo
		}
		return CarrierChronopost
	default:
		return code
	}
}
