package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinesync/server/pkg/wsrouter"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.HandleFunc("/ws", c.serveWS)
	// Anything else answers the liveness probe.
	r.NotFound(c.healthCheck)

	return r
}

func (c *controller) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Server is running"))
}

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New(c.logger)

	mux.Handle("create", c.handleCreate)
	mux.Handle("join", c.handleJoin)
	mux.Handle("videoSelected", c.handleVideoSelected)
	mux.Handle("videoControl", c.handleVideoControl)

	return mux
}
