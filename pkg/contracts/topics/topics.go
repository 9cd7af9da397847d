package topics

const (
	// Feed
	FeedRefreshed = "feed_refreshed"

	// Exportação de apostas
	BetExported    = "bet_exported"
	BetExportedDLQ = "bet_exported_dlq"
)
