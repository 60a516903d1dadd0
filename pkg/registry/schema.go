// pkg/registry/schema.go
package registry

// CatalogSeed is the on-disk registry of notification events and their
// templates, loaded by the catalog-loader tool.
type CatalogSeed struct {
	Version string      `json:"version"`
	Events  []SeedEvent `json:"events"`
}

type SeedEvent struct {
	Key       string         `json:"key"`
	Name      string         `json:"name"`
	IsActive  bool           `json:"isActive"`
	Templates []SeedTemplate `json:"templates"`
}

type SeedTemplate struct {
	RecipientType string      `json:"recipientType"`
	IsActive      bool        `json:"isActive"`
	Email         SeedChannel `json:"email"`
	Toast         SeedChannel `json:"toast"`
	Push          SeedChannel `json:"push"`
	InApp         SeedChannel `json:"inApp"`
}

// SeedChannel is the superset of per-channel content fields; channels ignore
// the fields they do not use.
type SeedChannel struct {
	Enabled   bool   `json:"enabled"`
	Subject   string `json:"subject,omitempty"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body,omitempty"`
	Message   string `json:"message,omitempty"`
	ActionURL string `json:"actionUrl,omitempty"`
	Icon      string `json:"icon,omitempty"`
}
