package main

import (
	"context"
	"flag"
	"log/slog"

	"clabs/internal/logger"
	"clabs/internal/validation"
)

func main() {
	var baseURL string
	flag.StringVar(&baseURL, "url", "http://localhost:8081", "Base URL for API validation")
	flag.Parse()

	logger.Init("info", "text")
	slog.Info("Starting API validation", "base_url", baseURL)

	validator := validation.NewContractValidator(baseURL)
	if err := validator.ValidateAll(context.Background()); err != nil {
		logger.Fatal("Validation failed", "error", err)
	}

	slog.Info("Validation passed")
}
