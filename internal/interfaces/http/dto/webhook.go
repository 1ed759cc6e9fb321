package dto

// Webhook wire statuses. The provider contract predates the standard
// envelope: every webhook response is `{"statut":0|1,"statutText":…}`,
// always delivered with HTTP 200.
const (
	WebhookStatutKO = 0
	WebhookStatutOK = 1
)

// WebhookResponse is the provider-facing response body
type WebhookResponse struct {
	Statut     int    `json:"statut"`
	StatutText string `json:"statutText,omitempty"`
}

// NewWebhookResponse builds a webhook response from an outcome flag
func NewWebhookResponse(ok bool, message string) WebhookResponse {
	statut := WebhookStatutKO
	if ok {
		statut = WebhookStatutOK
	}
	return WebhookResponse{
		Statut:     statut,
		StatutText: message,
	}
}
