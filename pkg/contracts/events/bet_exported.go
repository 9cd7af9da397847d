package events

import "time"

// Evento emitido quando o usuário exporta (copia) uma oportunidade.
type BetExported struct {
	ExportID    string    `json:"export_id"`
	Key         string    `json:"key"` // match|market|bookmaker em minúsculas
	Match       string    `json:"match"`
	Competition string    `json:"competition"`
	Market      string    `json:"market"`
	Bookmaker   string    `json:"bookmaker"`
	Odds        float64   `json:"odds"`
	EV          float64   `json:"ev"`
	Stake       float64   `json:"stake"`
	Line        string    `json:"line"`
	Ts          time.Time `json:"ts"`
}
