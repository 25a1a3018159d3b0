package models

import "encoding/json"

// Form defaults, shared by every surface that collects a ScrapeRequest.
const (
	DefaultQuery = "restaurants in New York"
	DefaultDepth = 10
	MinDepth     = 1
	DefaultLang  = "en"
)

// ScrapeRequest is the payload for POST /api/v1/scrape. It is the whole
// state of the parameter form and is passed explicitly into every action.
type ScrapeRequest struct {
	// Query is the raw search text written to the scraper's input file.
	// Default: "restaurants in New York". An explicit "" is kept.
	Query string `json:"query"`

	// Depth is the maximum scroll depth passed as -depth.
	// Default: 10. Values below 1 are clamped to 1.
	Depth int `json:"depth"`

	// Lang is the language code passed as -lang. Default: "en". An explicit
	// "" is kept.
	Lang string `json:"lang" binding:"omitempty,max=16"`

	// MaxAge enables the response cache: a cached response younger than
	// MaxAge milliseconds is returned without invoking the scraper.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// WebhookURL receives a run.completed / run.failed event for async runs.
	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// NewScrapeRequest returns a request holding the form defaults.
func NewScrapeRequest() ScrapeRequest {
	return ScrapeRequest{Query: DefaultQuery, Depth: DefaultDepth, Lang: DefaultLang}
}

// UnmarshalJSON fills keys absent from data with the form defaults. Keys
// present are taken as sent, so a cleared query or lang stays empty.
func (r *ScrapeRequest) UnmarshalJSON(data []byte) error {
	type plain ScrapeRequest
	p := plain(NewScrapeRequest())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ScrapeRequest(p)
	r.Clamp()
	return nil
}

// Clamp raises Depth to MinDepth, matching the number input's min=1. It
// leaves every other field as set.
func (r *ScrapeRequest) Clamp() {
	if r.Depth < MinDepth {
		r.Depth = MinDepth
	}
}
