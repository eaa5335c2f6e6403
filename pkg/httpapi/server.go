package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/tkw1536/lontod/pkg/config"
	"github.com/tkw1536/lontod/pkg/store"
)

// NewServer builds the *http.Server the entrypoint (C14) starts and shuts
// down: the mux.Router route table wrapped in the teacher's rs/cors
// configuration, with the same read/write/idle timeout discipline.
func NewServer(query *store.Query, cfg *config.Config, logger *log.Logger) *http.Server {
	handler := New(query, cfg, logger)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      c.Handler(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
