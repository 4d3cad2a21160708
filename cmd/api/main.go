package main

import (
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"impactproof/api"
	"impactproof/app"
	"impactproof/internal"
	"impactproof/internal/config"
)

func main() {
	godotenv.Load()

	log := internal.DefaultLogger
	env := config.LoadEnv()

	svc := app.NewRunService(log)
	server := api.NewServer(svc, log)

	addr := fmt.Sprintf(":%s", env.APIPort)
	log.Info("API server listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Error("server failed: %v", err)
	}
}
