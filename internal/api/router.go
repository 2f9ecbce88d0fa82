package api

import (
	"net/http"

	"delivery-route-service/internal/api/handlers"
	"delivery-route-service/internal/dispatch"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(dispatcher *dispatch.Dispatcher) http.Handler {
	mux := http.NewServeMux()

	dispatchHandler := &handlers.DispatchHandler{Dispatcher: dispatcher}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/dispatch/run", dispatchHandler.Run)

	return loggingMiddleware(requestIDMiddleware(mux))
}
