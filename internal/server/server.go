// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gorilla/mux"

	"ingrid-daylog/internal/engine"
	"ingrid-daylog/internal/image"
	"ingrid-daylog/internal/storage"
)

type Config struct {
	Host string
	Port int
}

// DayLogServer exposes the day log engine as a small tool-call surface:
// one POST endpoint routed by tool name, same wire shapes as an MCP client
// would send.
type DayLogServer struct {
	httpServer *http.Server
	engine     *engine.Engine
	spool      *image.SpoolCompressor
	store      storage.Store
	config     *Config
}

func NewDayLogServer(cfg *Config, eng *engine.Engine, spool *image.SpoolCompressor, store storage.Store) *DayLogServer {
	s := &DayLogServer{
		engine: eng,
		spool:  spool,
		store:  store,
		config: cfg,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleHTTP).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: router,
	}

	return s
}

func (s *DayLogServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *DayLogServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	var result *protocol.CallToolResult
	var err error

	switch request.Name {
	case "capture_meal":
		result, err = s.handleCaptureMeal(r.Context(), &request)
	case "get_day":
		result, err = s.handleGetDay(r.Context(), &request)
	case "analyze_day":
		result, err = s.handleAnalyzeDay(r.Context(), &request)
	case "track_day":
		result, err = s.handleTrackDay(r.Context(), &request)
	case "clear_day":
		result, err = s.handleClearDay(r.Context(), &request)
	case "set_language":
		result, err = s.handleSetLanguage(r.Context(), &request)
	default:
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (s *DayLogServer) Start(ctx context.Context) error {
	log.Printf("Starting day log server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *DayLogServer) Stop() error {
	if s.store != nil {
		s.store.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (s *DayLogServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
