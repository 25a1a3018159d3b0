package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/relay"
)

func handleRunScraper(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := models.ScrapeRequest{
			Query: request.GetString("query", models.DefaultQuery),
			Depth: request.GetInt("depth", models.DefaultDepth),
			Lang:  request.GetString("lang", models.DefaultLang),
		}
		req.Clamp()

		// Async + poll: a deep run easily outlasts one HTTP round trip.
		respBody, err := api.post(ctx, "/api/v1/scrape/async", req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}

		var job struct {
			models.JobResponse
			Error *models.ErrorDetail `json:"error"`
		}
		if err := json.Unmarshal(respBody, &job); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse scrape response: %v", err)), nil
		}
		if job.ID == "" {
			return mcp.NewToolResultError(formatError("scrape job creation failed", job.Error)), nil
		}

		resultBody, err := api.pollJob(ctx, "/api/v1/scrape/"+job.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling scrape job failed: %v", err)), nil
		}

		var status models.JobStatusResponse
		if err := json.Unmarshal(resultBody, &status); err != nil || status.Result == nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse scrape status: %s", resultBody)), nil
		}

		resp := status.Result
		if !resp.Success {
			return mcp.NewToolResultError(formatError("scraping failed", resp.Error)), nil
		}
		return mcp.NewToolResultText(formatRecords(resp)), nil
	}
}

func handleBuild(api *apiClient) server.ToolHandlerFunc {
	return toolAction(api, "/api/v1/build")
}

func handleMakeExecutable(api *apiClient) server.ToolHandlerFunc {
	return toolAction(api, "/api/v1/make-executable")
}

func toolAction(api *apiClient, path string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		respBody, err := api.post(ctx, path, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("request failed: %v", err)), nil
		}

		var resp models.ToolResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(formatError(path+" failed", resp.Error)), nil
		}
		return mcp.NewToolResultText(resp.Message), nil
	}
}

func handleStatus(api *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		respBody, err := api.get(ctx, "/api/v1/health")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("health request failed: %v", err)), nil
		}

		var h models.HealthResponse
		if err := json.Unmarshal(respBody, &h); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse health response: %v", err)), nil
		}

		st := h.InvokerStat
		return mcp.NewToolResultText(fmt.Sprintf(
			"Status: %s (uptime %s)\nBinary: %s\nExists: %t\nExecutable: %t\nBusy: %t\nRuns: %d",
			h.Status, h.Uptime, st.BinaryPath, st.BinaryExists, st.Executable, st.Busy, st.Runs,
		)), nil
	}
}

// formatError renders an API error with its code, exit status and stderr.
func formatError(fallback string, e *models.ErrorDetail) string {
	if e == nil {
		return fallback
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code, e.Message)
	if e.Stderr != "" {
		fmt.Fprintf(&sb, "\n\nstderr:\n%s", e.Stderr)
	}
	if e.Raw != "" {
		fmt.Fprintf(&sb, "\n\nraw results:\n%s", e.Raw)
	}
	return sb.String()
}

// formatRecords lists one summary line per record followed by the full JSON.
func formatRecords(resp *models.ScrapeResponse) string {
	r := resp.Request
	if resp.Status == models.StatusNoResults {
		return fmt.Sprintf("Query %q (depth %d, lang %s): %s", r.Query, r.Depth, r.Lang, resp.Message)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query %q (depth %d, lang %s): %d records\n\n", r.Query, r.Depth, r.Lang, resp.Total)
	for i, rec := range resp.Records {
		s := relay.Summarize(rec)
		fmt.Fprintf(&sb, "--- [%d] %s ---\n", i+1, s.Title)
		if s.Address != "" {
			fmt.Fprintf(&sb, "Address: %s\n", s.Address)
		}
		if s.Rating != "" {
			fmt.Fprintf(&sb, "Rating: %s (%s reviews)\n", s.Rating, s.ReviewCount)
		}
		sb.WriteString(relay.Pretty(rec))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
