package optilog

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Envelope is the uniform response body of the provider API. Statut 1 means
// success; anything else carries a French status message in StatutText.
type Envelope struct {
	Statut     int             `json:"statut"`
	StatutText string          `json:"statutText"`
	Data       json.RawMessage `json:"data,omitempty"`
}

const statutOK = 1

// OrderDTO is the provider wire representation of an order. Field names
// follow the provider's French vocabulary and must not be renamed.
type OrderDTO struct {
	ID           string       `json:"ID,omitempty"`
	DestID       string       `json:"DestID"`
	Statut       *int         `json:"Statut,omitempty"`
	Transporteur string       `json:"Transporteur,omitempty"`
	Origine      string       `json:"Origine,omitempty"`
	DateCreation string       `json:"DateCreation,omitempty"`
	Articles     []ArticleDTO `json:"Articles,omitempty"`
	Adresse      *AdresseDTO  `json:"Adresse,omitempty"`
	// Colis is only populated by the extended API variant
	Colis []ColisDTO `json:"Colis,omitempty"`
}

// ArticleDTO is one order line on the wire
type ArticleDTO struct {
	Ref      string `json:"Ref"`
	Quantite int    `json:"Quantite"`
	Info1    string `json:"Info1,omitempty"`
	Info2    string `json:"Info2,omitempty"`
	Info3    string `json:"Info3,omitempty"`
	Info4    string `json:"Info4,omitempty"`
}

// AdresseDTO is the delivery address sub-record on the wire
type AdresseDTO struct {
	Nom           string `json:"Nom,omitempty"`
	Societe       string `json:"Societe,omitempty"`
	Adresse1      string `json:"Adresse1,omitempty"`
	Adresse2      string `json:"Adresse2,omitempty"`
	Adresse3      string `json:"Adresse3,omitempty"`
	CodePostal    string `json:"CodePostal,omitempty"`
	Ville         string `json:"Ville,omitempty"`
	Pays          string `json:"Pays,omitempty"`
	Tel           string `json:"Tel,omitempty"`
	Mobile        string `json:"Mobile,omitempty"`
	Email         string `json:"Email,omitempty"`
	IDPointRelais string `json:"IDPointRelais,omitempty"`
}

// ColisDTO is a read-only parcel record, extended API only
type ColisDTO struct {
	Statut  int             `json:"Statut"`
	NoSuivi string          `json:"NoSuivi,omitempty"`
	Poids   int             `json:"Poids,omitempty"`
	Contenu []ColisLigneDTO `json:"Contenu,omitempty"`
}

// ColisLigneDTO is one product line inside a parcel
type ColisLigneDTO struct {
	Ref      string `json:"Ref"`
	Quantite int    `json:"Quantite"`
}

// ProductDTO is the provider wire representation of a product. Weight
// travels in kilograms and dimensions in centimetres; unset measurements
// are omitted rather than sent as zero.
type ProductDTO struct {
	ID      string `json:"ID,omitempty"`
	SKU     string `json:"SKU"`
	Libelle string `json:"Libelle,omitempty"`
	Actif   bool   `json:"Actif"`

	Poids    *decimal.Decimal `json:"Poids,omitempty"`
	Hauteur  *decimal.Decimal `json:"Hauteur,omitempty"`
	Longueur *decimal.Decimal `json:"Longueur,omitempty"`
	Largeur  *decimal.Decimal `json:"Largeur,omitempty"`

	StockDispo    int `json:"StockDispo,omitempty"`
	StockPhysique int `json:"StockPhysique,omitempty"`
	StockCommande int `json:"StockCommande,omitempty"`

	PrixVente *decimal.Decimal `json:"PrixVente,omitempty"`
	PrixAchat *decimal.Decimal `json:"PrixAchat,omitempty"`
}
