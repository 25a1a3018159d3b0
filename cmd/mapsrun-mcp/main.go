package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/mapsrun/models"
)

func main() {
	apiURL := os.Getenv("MAPSRUN_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	// Optional: a server started without MAPSRUN_API_KEYS accepts anonymous calls.
	apiKey := os.Getenv("MAPSRUN_API_KEY")

	s := newServer(&apiClient{baseURL: apiURL, apiKey: apiKey})
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(api *apiClient) *server.MCPServer {
	s := server.NewMCPServer(
		"mapsrun",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	runTool := mcp.NewTool("run_scraper",
		mcp.WithDescription("Run the Google Maps scraper for a search query and return the scraped places. The scraper binary must have been built and made executable first."),
		mcp.WithString("query",
			mcp.Description(fmt.Sprintf("Search text, e.g. 'coffee in Berlin' (default: %q)", models.DefaultQuery)),
		),
		mcp.WithNumber("depth",
			mcp.Description(fmt.Sprintf("Maximum scroll depth of the results list (default: %d, min: %d)", models.DefaultDepth, models.MinDepth)),
		),
		mcp.WithString("lang",
			mcp.Description(fmt.Sprintf("Language code for results (default: %q)", models.DefaultLang)),
		),
	)
	s.AddTool(runTool, handleRunScraper(api))

	buildTool := mcp.NewTool("build_scraper",
		mcp.WithDescription("Compile the scraper sources in the server's working directory into the google-maps-scraper executable."),
	)
	s.AddTool(buildTool, handleBuild(api))

	chmodTool := mcp.NewTool("make_executable",
		mcp.WithDescription("Mark the scraper binary as executable (chmod +x). Linux/Unix only."),
	)
	s.AddTool(chmodTool, handleMakeExecutable(api))

	statusTool := mcp.NewTool("scraper_status",
		mcp.WithDescription("Report whether the scraper binary exists, is executable, and whether an action is running."),
	)
	s.AddTool(statusTool, handleStatus(api))

	return s
}
