package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/runner"
	"github.com/use-agent/mapsrun/webhook"
)

// JobProcessing is the status of an async run that has not finished yet.
const JobProcessing = "processing"

// jobTTL is how long finished and pending jobs are kept.
const jobTTL = time.Hour

type job struct {
	mu        sync.Mutex
	id        string
	status    string
	result    *models.ScrapeResponse
	createdAt time.Time
}

func (j *job) finish(resp *models.ScrapeResponse) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = resp.Status
	j.result = resp
}

func (j *job) snapshot() models.JobStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	return models.JobStatusResponse{ID: j.id, Status: j.status, Result: j.result}
}

// JobStore holds in-flight and completed async runs.
type JobStore struct {
	jobs sync.Map // id → *job

	// admitted is held from the 202 reply until the job's run returns, so
	// two async posts cannot both be accepted.
	admitted atomic.Bool
}

// NewJobStore creates a store and starts its expiry loop.
func NewJobStore() *JobStore {
	s := &JobStore{}
	go s.expireLoop()
	return s
}

func (s *JobStore) add() *job {
	j := &job{
		id:        "run-" + randomID(),
		status:    JobProcessing,
		createdAt: time.Now(),
	}
	s.jobs.Store(j.id, j)
	return j
}

func (s *JobStore) get(id string) (*job, bool) {
	v, ok := s.jobs.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*job), true
}

func (s *JobStore) expireLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-jobTTL)
		s.jobs.Range(func(key, value any) bool {
			if value.(*job).createdAt.Before(cutoff) {
				s.jobs.Delete(key)
			}
			return true
		})
	}
}

// PostScrapeAsync returns a handler for POST /api/v1/scrape/async.
// The run happens in the background; the caller polls GET /api/v1/scrape/:id
// or receives a webhook if webhook_url is set.
//
// At most one async job is admitted at a time. A synchronous scrape, build
// or chmod that starts between admission and the job's own invocation still
// wins the invoker; the job then finishes failed with RUN_IN_PROGRESS.
func PostScrapeAsync(rn *runner.Runner, store *JobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindScrapeRequest(c)
		if !ok {
			return
		}

		if !store.admitted.CompareAndSwap(false, true) {
			respondBusy(c)
			return
		}
		if rn.Invoker().Busy() {
			store.admitted.Store(false)
			respondBusy(c)
			return
		}

		j := store.add()
		go func() {
			defer store.admitted.Store(false)
			runJob(rn, j, req)
		}()

		c.JSON(http.StatusAccepted, models.JobResponse{ID: j.id, Status: JobProcessing})
	}
}

func respondBusy(c *gin.Context) {
	respondError(c, models.NewScrapeError(models.ErrCodeBusy,
		"a scraper action is already running", nil))
}

// GetScrapeJob returns a handler for GET /api/v1/scrape/:id.
func GetScrapeJob(store *JobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		j, ok := store.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "scrape job not found",
				},
			})
			return
		}
		c.JSON(http.StatusOK, j.snapshot())
	}
}

func runJob(rn *runner.Runner, j *job, req models.ScrapeRequest) {
	resp := rn.Scrape(context.Background(), req)
	j.finish(resp)

	slog.Info("scrape job finished",
		"id", j.id,
		"status", resp.Status,
		"total", resp.Total,
	)

	if req.WebhookURL == "" {
		return
	}
	event := webhook.EventRunCompleted
	if !resp.Success {
		event = webhook.EventRunFailed
	}
	webhook.NotifyAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
		Type:      event,
		RunID:     j.id,
		Timestamp: time.Now().Unix(),
		Data:      resp,
	})
}

// randomID generates a 16-character hex string.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
