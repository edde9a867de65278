package domain

// FeedConfig represents RSS feed configuration
type FeedConfig struct {
	// BaseURL prefixes the feed self link, e.g. http://localhost:8080
	BaseURL string `json:"base_url"`
	// Limit caps the number of items per feed
	Limit int `json:"limit"`
}

// DefaultLimit is used when FeedConfig.Limit is not set
const DefaultLimit = 50
