package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimikegami/healthcare-microservices/users-service/config"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/app"
	"github.com/rs/zerolog/log"

	postgresDriver "github.com/alimikegami/healthcare-microservices/users-service/internal/infrastructure/database/postgres"
)

func main() {
	config := config.CreateNewConfig()
	db, err := postgresDriver.GetDBInstance(config.PostgreSQLConfig.DBUsername, config.PostgreSQLConfig.DBPassword, config.PostgreSQLConfig.DBHost, config.PostgreSQLConfig.DBPort, config.PostgreSQLConfig.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the database")
	}

	if err := postgresDriver.ApplySchema(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply the database schema")
	}

	server := app.App{
		DB:     db,
		Config: config,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		if err := server.StopServer(); err != nil {
			log.Error().Err(err).Str("component", "main").Msg("")
		}
	}()

	server.Start()
}
