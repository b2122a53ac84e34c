// internal/server/tools.go
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
)

type CaptureMealParams struct {
	ImageBase64 string `json:"image_base64" description:"Captured frame, base64-encoded PNG or JPEG"`
}

type SetLanguageParams struct {
	Language string `json:"language" description:"BCP 47 language tag for new analyses, e.g. en or hi"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return nil
}

// handleCaptureMeal spools the uploaded frame and appends a day-log entry.
// A compression failure is reported in-band; no entry is created for it.
func (s *DayLogServer) handleCaptureMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params CaptureMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.ImageBase64 == "" {
		return nil, fmt.Errorf("image_base64 is required")
	}

	frame, err := base64.StdEncoding.DecodeString(params.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("invalid image encoding: %w", err)
	}

	srcURI, err := s.spool.Capture(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to store captured frame: %w", err)
	}

	entry, err := s.engine.Capture(ctx, srcURI)
	if err != nil {
		result := map[string]interface{}{
			"captured": false,
			"reason":   err.Error(),
		}
		return s.createJSONResponse(result)
	}

	result := map[string]interface{}{
		"captured": true,
		"entry":    entry,
	}
	return s.createJSONResponse(result)
}

// handleGetDay returns a snapshot of the current day's log.
func (s *DayLogServer) handleGetDay(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createJSONResponse(s.engine.Snapshot())
}

// handleAnalyzeDay runs the incremental analysis pass over today's entries.
func (s *DayLogServer) handleAnalyzeDay(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.engine.AnalyzeAll(ctx)
	return s.createJSONResponse(s.engine.Snapshot())
}

// handleTrackDay aggregates the analyzed entries into the day report.
func (s *DayLogServer) handleTrackDay(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.engine.TrackDay(ctx)
	return s.createJSONResponse(s.engine.Snapshot())
}

// handleClearDay deletes the persisted day and resets the in-memory log.
func (s *DayLogServer) handleClearDay(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.engine.Clear(ctx)
	return s.createJSONResponse(s.engine.Snapshot())
}

// handleSetLanguage swaps the chat session language for future analyses.
func (s *DayLogServer) handleSetLanguage(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SetLanguageParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Language == "" {
		return nil, fmt.Errorf("language is required")
	}

	if err := s.engine.SetLanguage(params.Language); err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"language": params.Language,
	}
	return s.createJSONResponse(result)
}
