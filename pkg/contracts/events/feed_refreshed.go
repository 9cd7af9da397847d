package events

import "time"

// Evento publicado no tópico "feed_refreshed" após cada carga bem-sucedida.
type FeedRefreshed struct {
	Generation    uint64    `json:"generation"`
	Mode          string    `json:"mode"` // "initial" | "silent"
	Opportunities int       `json:"opportunities"`
	Multiples     int       `json:"multiples"`
	BestEV        float64   `json:"best_ev"`
	AvgEV         float64   `json:"avg_ev"`
	TotalStake    float64   `json:"total_stake"`
	UpdatedAt     time.Time `json:"updated_at"`
}
