package main

import (
	"net/http"

	"github.com/mcdev12/cueroom/go/internal/api"
	"github.com/mcdev12/cueroom/go/internal/config"
)

func setupServer(cfg *config.Config, services *Services) *http.Server {
	router := api.NewRouter(services.Handler, services.WebSocketHandler)

	return &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
}
