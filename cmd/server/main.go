package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cinesync/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 3000,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	syncIntervalMs = configVar[int]{
		envKey:       "SERVER_SYNC_INTERVAL_MS",
		flagKey:      "sync-interval-ms",
		defaultValue: 100,
	}
	codeRetryLimit = configVar[int]{
		envKey:       "SERVER_CODE_RETRY_LIMIT",
		flagKey:      "code-retry-limit",
		defaultValue: 3,
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(syncIntervalMs.flagKey, syncIntervalMs.defaultValue, "Minimum interval between forwarded playback syncs, in milliseconds")
	pflag.Int(codeRetryLimit.flagKey, codeRetryLimit.defaultValue, "Maximum number of room code regenerations on collision")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(syncIntervalMs.flagKey, syncIntervalMs.envKey)
	viper.BindEnv(codeRetryLimit.flagKey, codeRetryLimit.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(syncIntervalMs.flagKey, syncIntervalMs.defaultValue)
	viper.SetDefault(codeRetryLimit.flagKey, codeRetryLimit.defaultValue)

	return &app.AppConfig{
		Host:           viper.GetString(host.flagKey),
		Port:           viper.GetInt(port.flagKey),
		LogLevel:       viper.GetString(logLevel.flagKey),
		SyncIntervalMs: viper.GetInt(syncIntervalMs.flagKey),
		CodeRetryLimit: viper.GetInt(codeRetryLimit.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
