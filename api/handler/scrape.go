package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapsrun/cache"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/runner"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Orchestration flow:
//  1. Parse request. Absent keys and an empty body take the defaults.
//  2. Cache lookup when max_age is set.
//  3. Runner.Scrape → invoke binary, relay results, clean up temp files.
//  4. Cache store on success, respond with the mapped status code.
func Scrape(rn *runner.Runner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		req, ok := bindScrapeRequest(c)
		if !ok {
			return
		}

		// ── 2. Cache lookup ─────────────────────────────────────────
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cache.Key(req), req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		// ── 3. Run ──────────────────────────────────────────────────
		resp := rn.Scrape(c.Request.Context(), req)

		// ── 4. Cache store ──────────────────────────────────────────
		if cc != nil && req.MaxAge > 0 && resp.Success {
			cc.Set(cache.Key(req), resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(scrapeStatus(resp), resp)
	}
}

// bindScrapeRequest decodes the JSON body into a ScrapeRequest. Absent keys
// and an empty body take the form defaults. It writes a 400 and returns
// false on malformed input.
func bindScrapeRequest(c *gin.Context) (models.ScrapeRequest, bool) {
	req := models.NewScrapeRequest()
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err))
		return req, false
	}
	return req, true
}

// scrapeStatus picks the HTTP status for a run response. Both "completed"
// and "no_results" are 200.
func scrapeStatus(resp *models.ScrapeResponse) int {
	if resp.Success || resp.Error == nil {
		return http.StatusOK
	}
	return mapErrorToStatus(resp.Error.Code)
}

// respondError writes a structured JSON error response.
func respondError(c *gin.Context, err error) {
	se := models.AsScrapeError(err)
	c.JSON(mapErrorToStatus(se.Code), models.ErrorResponse{
		Success: false,
		Error:   se.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(code string) int {
	switch code {
	case models.ErrCodeToolNotFound, models.ErrCodeExecutableNotFound:
		return http.StatusFailedDependency // 424
	case models.ErrCodeBuildFailed, models.ErrCodePermissionChangeFailed,
		models.ErrCodeScraperFailed, models.ErrCodeResultParse:
		return http.StatusBadGateway // 502
	case models.ErrCodeBusy:
		return http.StatusConflict // 409
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
