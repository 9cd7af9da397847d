package dto

import "time"

// Export é um registro do diário de exportações (tabela bet_exports)
type Export struct {
	ExportID    string    `json:"exportId"`
	Key         string    `json:"key"`
	Match       string    `json:"match"`
	Competition string    `json:"competition"`
	Market      string    `json:"market"`
	Bookmaker   string    `json:"bookmaker"`
	Odds        float64   `json:"odds"`
	EV          float64   `json:"ev"`
	Stake       float64   `json:"stake"`
	Line        string    `json:"line"`
	ExportedAt  time.Time `json:"exportedAt"`
}

// ExportRequest é o corpo de POST /v1/feed/export
type ExportRequest struct {
	Key string `json:"key"`
}

// ExportResponse devolve a linha pronta para copiar e o resultado do registro
type ExportResponse struct {
	ExportID  string `json:"exportId"`
	Line      string `json:"line"`
	Journaled bool   `json:"journaled"`
}

// FeedStatus é a resposta de GET /v1/feed/state
type FeedStatus struct {
	Lifecycle     string     `json:"lifecycle"`
	Loaded        bool       `json:"loaded"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
	Generation    uint64     `json:"generation"`
	Opportunities int        `json:"opportunities"`
	Multiples     int        `json:"multiples"`
}
