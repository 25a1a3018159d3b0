package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/use-agent/mapsrun/models"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "mapsrun API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per query for averaging")
	depth  = flag.Int("depth", 2, "Scroll depth for every run")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Queries covering dense, sparse and non-English result lists.
var testQueries = []struct {
	Label string
	Query string
	Lang  string
}{
	{"Dense", "restaurants in New York", "en"},
	{"Sparse", "lighthouses in Kansas", "en"},
	{"Niche", "vinyl record stores in Berlin", "de"},
	{"Empty", "zzzz no such business qqqq", "en"},
}

type runResult struct {
	Run      int    `json:"run"`
	TotalMs  int64  `json:"total_ms"`
	InvokeMs int64  `json:"invoke_ms"`
	ParseMs  int64  `json:"parse_ms"`
	Records  int    `json:"records"`
	Status   string `json:"status"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

type queryAverages struct {
	TotalMs  float64 `json:"total_ms"`
	InvokeMs float64 `json:"invoke_ms"`
	ParseMs  float64 `json:"parse_ms"`
	Records  float64 `json:"records"`
}

type queryResult struct {
	Query    string         `json:"query"`
	Label    string         `json:"label"`
	Runs     []runResult    `json:"runs"`
	Averages *queryAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp    string        `json:"timestamp"`
	APIURL       string        `json:"api_url"`
	RunsPerQuery int           `json:"runs_per_query"`
	Depth        int           `json:"depth"`
	Results      []queryResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== mapsrun Benchmark Suite ===")
	fmt.Printf("API URL:    %s\n", *apiURL)
	fmt.Printf("Runs/query: %d\n", *runs)
	fmt.Printf("Depth:      %d\n", *depth)
	fmt.Printf("Output:     %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure mapsrun is running and the scraper is built and executable\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		APIURL:       *apiURL,
		RunsPerQuery: *runs,
		Depth:        *depth,
	}

	for _, q := range testQueries {
		fmt.Printf("Benchmarking [%s] %q ...\n", q.Label, q.Query)
		qr := queryResult{Query: q.Query, Label: q.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkQuery(models.ScrapeRequest{Query: q.Query, Depth: *depth, Lang: q.Lang}, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d records\n", rr.TotalMs, rr.Records)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			qr.Runs = append(qr.Runs, rr)
		}

		qr.Averages = computeAverages(qr.Runs)
		report.Results = append(report.Results, qr)
		fmt.Println()
	}

	fmt.Println(renderTable(report.Results))

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

// checkAPI requires the server to be up and its binary ready to run.
func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return fmt.Errorf("cannot reach API at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	var h models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return fmt.Errorf("decode health: %w", err)
	}
	if !h.InvokerStat.BinaryExists || !h.InvokerStat.Executable {
		return fmt.Errorf("scraper binary %s is not ready", h.InvokerStat.BinaryPath)
	}
	return nil
}

func benchmarkQuery(sreq models.ScrapeRequest, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(sreq)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/scrape", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	// Scraper runs are unbounded server-side; only the client gives up.
	client := &http.Client{Timeout: 30 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var sr models.ScrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = sr.Success
	rr.Status = sr.Status
	rr.TotalMs = sr.Timing.TotalMs
	rr.InvokeMs = sr.Timing.InvokeMs
	rr.ParseMs = sr.Timing.ParseMs
	rr.Records = sr.Total
	if sr.Error != nil {
		rr.Error = fmt.Sprintf("[%s] %s", sr.Error.Code, sr.Error.Message)
	}
	return rr
}

func computeAverages(runs []runResult) *queryAverages {
	var successCount int
	var avg queryAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.InvokeMs += float64(r.InvokeMs)
		avg.ParseMs += float64(r.ParseMs)
		avg.Records += float64(r.Records)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.InvokeMs /= n
	avg.ParseMs /= n
	avg.Records /= n
	return &avg
}

func renderTable(results []queryResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Averages == nil {
			rows = append(rows, []string{r.Label, "FAILED", "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			r.Label,
			fmt.Sprintf("%dms", int64(r.Averages.TotalMs)),
			fmt.Sprintf("%dms", int64(r.Averages.InvokeMs)),
			fmt.Sprintf("%dms", int64(r.Averages.ParseMs)),
			strconv.FormatFloat(r.Averages.Records, 'f', 1, 64),
		})
	}

	header := lipgloss.NewStyle().Bold(true)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Query", "Avg Total", "Avg Invoke", "Avg Parse", "Avg Records").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Rows(rows...).
		Render()
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
