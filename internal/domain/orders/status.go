package orders

// CanonicalStatus is the connector-side status vocabulary. The standard
// vocabulary collapses the provider codes into six coarse states; the
// extended vocabulary distinguishes the finer in-process states exposed by
// the extended API variant.
type CanonicalStatus string

const (
	// Coarse states (standard vocabulary)
	StatusPending    CanonicalStatus = "PENDING"
	StatusProcessing CanonicalStatus = "PROCESSING"
	StatusShipped    CanonicalStatus = "SHIPPED"
	StatusDelivered  CanonicalStatus = "DELIVERED"
	StatusReturned   CanonicalStatus = "RETURNED"
	StatusIncident   CanonicalStatus = "INCIDENT"

	// Fine-grained states (extended vocabulary)
	StatusDraft             CanonicalStatus = "DRAFT"
	StatusAwaitingRelease   CanonicalStatus = "AWAITING_RELEASE"
	StatusSuspended         CanonicalStatus = "SUSPENDED"
	StatusRegistered        CanonicalStatus = "REGISTERED"
	StatusValidated         CanonicalStatus = "VALIDATED"
	StatusPreparing         CanonicalStatus = "PREPARING"
	StatusPrepared          CanonicalStatus = "PREPARED"
	StatusInTransit         CanonicalStatus = "IN_TRANSIT"
	StatusAvailableAtPickup CanonicalStatus = "AVAILABLE_AT_PICKUP"
	StatusReturnInProgress  CanonicalStatus = "RETURN_IN_PROGRESS"
	StatusArchived          CanonicalStatus = "ARCHIVED"
)

// VocabularyMode selects which status vocabulary translations use
type VocabularyMode string

const (
	VocabularyStandard VocabularyMode = "standard"
	VocabularyExtended VocabularyMode = "extended"
)

// IsValid returns true if the vocabulary mode is valid
func (m VocabularyMode) IsValid() bool {
	return m == VocabularyStandard || m == VocabularyExtended
}

// Provider status codes. The gaps are intentional: these are the only
// codes the provider emits.
const (
	StatusCodeCarrierRefused  = -6
	StatusCodeInvalidAddress  = -5
	StatusCodeAwaitingRelease = -4
	StatusCodeDraft           = -3
	StatusCodeSuspended       = -1
	StatusCodeRegistered      = 0
	StatusCodeValidated       = 1
	StatusCodePreparing       = 2
	StatusCodePrepared        = 3
	StatusCodeShipped         = 4
	StatusCodeInTransit       = 5
	StatusCodePickupPoint     = 6
	StatusCodeDelivered       = 7
	StatusCodeIncident        = 8
	StatusCodeReturning       = 9
	StatusCodeReturned        = 10
	StatusCodeArchived        = 60
)

var extendedStatuses = map[int]CanonicalStatus{
	StatusCodeCarrierRefused:  StatusIncident,
	StatusCodeInvalidAddress:  StatusIncident,
	StatusCodeAwaitingRelease: StatusAwaitingRelease,
	StatusCodeDraft:           StatusDraft,
	StatusCodeSuspended:       StatusSuspended,
	StatusCodeRegistered:      StatusRegistered,
	StatusCodeValidated:       StatusValidated,
	StatusCodePreparing:       StatusPreparing,
	StatusCodePrepared:        StatusPrepared,
	StatusCodeShipped:         StatusShipped,
	StatusCodeInTransit:       StatusInTransit,
	StatusCodePickupPoint:     StatusAvailableAtPickup,
	StatusCodeDelivered:       StatusDelivered,
	StatusCodeIncident:        StatusIncident,
	StatusCodeReturning:       StatusReturnInProgress,
	StatusCodeReturned:        StatusReturned,
	StatusCodeArchived:        StatusArchived,
}

var standardStatuses = map[int]CanonicalStatus{
	StatusCodeCarrierRefused:  StatusIncident,
	StatusCodeInvalidAddress:  StatusIncident,
	StatusCodeAwaitingRelease: StatusPending,
	StatusCodeDraft:           StatusPending,
	StatusCodeSuspended:       StatusPending,
	StatusCodeRegistered:      StatusPending,
	StatusCodeValidated:       StatusProcessing,
	StatusCodePreparing:       StatusProcessing,
	StatusCodePrepared:        StatusProcessing,
	StatusCodeShipped:         StatusShipped,
	StatusCodeInTransit:       StatusShipped,
	StatusCodePickupPoint:     StatusShipped,
	StatusCodeDelivered:       StatusDelivered,
	StatusCodeIncident:        StatusIncident,
	StatusCodeReturning:       StatusReturned,
	StatusCodeReturned:        StatusReturned,
	StatusCodeArchived:        StatusDelivered,
}

// statusLabels are the provider-facing French diagnostic labels
var statusLabels = map[int]string{
	StatusCodeCarrierRefused:  "Refusée par le transporteur",
	StatusCodeInvalidAddress:  "Adresse de livraison invalide",
	StatusCodeAwaitingRelease: "En attente de libération",
	StatusCodeDraft:           "Brouillon",
	StatusCodeSuspended:       "Suspendue",
	StatusCodeRegistered:      "Enregistrée",
	StatusCodeValidated:       "Validée",
	StatusCodePreparing:       "En préparation",
	StatusCodePrepared:        "Préparation terminée",
	StatusCodeShipped:         "Expédiée",
	StatusCodeInTransit:       "En transit",
	StatusCodePickupPoint:     "Disponible en point relais",
	StatusCodeDelivered:       "Livrée",
	StatusCodeIncident:        "Incident de livraison",
	StatusCodeReturning:       "Retour en cours",
	StatusCodeReturned:        "Retournée",
	StatusCodeArchived:        "Archivée",
}

// UnknownStatusLabel is returned for codes outside the provider domain
const UnknownStatusLabel = "Inconnu"

// StatusTranslator maps provider status codes to the canonical vocabulary.
// The vocabulary mode is fixed at construction; reconfiguration means
// constructing a new translator.
type StatusTranslator struct {
	mode VocabularyMode
}

// NewStatusTranslator creates a translator for the given vocabulary mode.
// An invalid mode falls back to the standard vocabulary.
func NewStatusTranslator(mode VocabularyMode) *StatusTranslator {
	if !mode.IsValid() {
		mode = VocabularyStandard
	}
	return &StatusTranslator{mode: mode}
}

// Mode returns the vocabulary mode the translator was built with
func (t *StatusTranslator) Mode() VocabularyMode {
	return t.mode
}

// Translate maps a raw provider status code to a canonical status. The
// second return value is false when the code is outside the provider domain.
func (t *StatusTranslator) Translate(raw int) (CanonicalStatus, bool) {
	table := standardStatuses
	if t.mode == VocabularyExtended {
		table = extendedStatuses
	}
	status, ok := table[raw]
	return status, ok
}

// DisplayName returns the French diagnostic label for a raw status code
func (t *StatusTranslator) DisplayName(raw int) string {
	if label, ok := statusLabels[raw]; ok {
		return label
	}
	return UnknownStatusLabel
}

// IsKnownStatusCode returns true if the code is in the provider domain
func IsKnownStatusCode(raw int) bool {
	_, ok := extendedStatuses[raw]
	return ok
}

// StatusCodes returns the full provider status code domain
func StatusCodes() []int {
	codes := make([]int, 0, len(extendedStatuses))
	for code := range extendedStatuses {
		codes = append(codes, code)
	}
	return codes
}
