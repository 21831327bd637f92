package server

import "net/http"

// setupRoutes registers all API routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/query", s.queryHandler.QueryHandler)
	mux.HandleFunc("/api/documents", s.documentHandler.IngestHandler)
	mux.HandleFunc("/api/conversations/", s.conversationHandler.GetHandler)
	mux.HandleFunc("/api/status", s.statusHandler.StatusHandler)

	return mux
}
