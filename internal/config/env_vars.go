package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	apiBaseURLVar = "KYC_CONSOLE_API_URL"
	appNameVar    = "KYC_CONSOLE_APP_NAME"
	dataFolderVar = "KYC_CONSOLE_DATA_FOLDER"
	timeoutVar    = "KYC_CONSOLE_REQUEST_TIMEOUT"
)

type EnvConfig interface {
	GetAPIBaseURL() string
	GetAppName() string
	GetDataFolder() string
	GetRequestTimeout() time.Duration
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetAPIBaseURL returns the origin of the console API. This is the one
// required piece of environment configuration.
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "KYC Console")
}

// GetDataFolder returns the folder holding the credential database.
func (EnvVars) GetDataFolder() string {
	if folder := os.Getenv(dataFolderVar); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".kyc-console")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	return getDuration(timeoutVar, 30*time.Second)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
