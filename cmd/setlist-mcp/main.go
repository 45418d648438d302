package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/setlist/models"
	"github.com/use-agent/setlist/render"
)

func main() {
	apiURL := os.Getenv("SETLIST_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SETLIST_API_KEY")

	s := server.NewMCPServer(
		"setlist",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	parseTool := mcp.NewTool("parse_playlist",
		mcp.WithDescription("Open a music-streaming playlist page in a headless browser and return its name, description, cover image and track list as Markdown. Takes up to about a minute; only one playlist is parsed at a time."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the public playlist page"),
		),
	)
	s.AddTool(parseTool, handleParsePlaylist(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the setlist API and returns status and body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func handleParsePlaylist(apiURL, apiKey string) server.ToolHandlerFunc {
	// Navigation and readiness together are bounded well below this.
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		_, respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/playlist", models.ParseRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse request failed: %v", err)), nil
		}

		var resp models.ParseResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if resp.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)), nil
		}
		if resp.Playlist == nil {
			return mcp.NewToolResultError("response carried no playlist"), nil
		}

		md, err := render.Markdown(resp.Playlist, url)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render playlist: %v", err)), nil
		}
		if !resp.Success {
			// The fallback playlist already explains the failure.
			return mcp.NewToolResultError(md), nil
		}

		md += fmt.Sprintf("\n\n---\nExtracted in %d ms", resp.Timing.TotalMs)
		return mcp.NewToolResultText(md), nil
	}
}
