package models

// JobResponse is the immediate response for POST /api/v1/scrape/async.
type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// JobStatusResponse is the response for GET /api/v1/scrape/:id.
type JobStatusResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"` // "processing", "completed", "no_results", "failed"
	Result *ScrapeResponse `json:"result,omitempty"`
}
