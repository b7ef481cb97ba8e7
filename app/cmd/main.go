package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docqa/app/server"
	"docqa/types"

	"github.com/joho/godotenv"
)

func init() {
	loadEnvVariables()
}

func main() {
	cfg, err := types.ConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	s, err := server.New(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func loadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
}
