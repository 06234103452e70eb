package app

import (
	"strings"

	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
	"github.com/touchbasehq/touchbase-backend/internal/utils"
)

type Config struct {
	Port           string
	ServiceName    string
	Environment    string
	Version        string
	AllowedOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	rawOrigins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)
	var origins []string
	for _, origin := range strings.Split(rawOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return Config{
		Port:           utils.GetEnv("PORT", "8080", log),
		ServiceName:    utils.GetEnv("SERVICE_NAME", "touchbase-backend", log),
		Environment:    utils.GetEnv("ENVIRONMENT", "development", log),
		Version:        utils.GetEnv("SERVICE_VERSION", "dev", log),
		AllowedOrigins: origins,
	}
}
