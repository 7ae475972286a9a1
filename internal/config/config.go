package config

import (
	"os"
	"strings"
)

const DefaultRoot = "~/Documents/deckvault"

const defaultPrefix = "deckvault"

// Root returns the projects root from the DECKVAULT_ROOT env var,
// falling back to DefaultRoot.
func Root() string {
	if env := os.Getenv("DECKVAULT_ROOT"); env != "" {
		return env
	}
	return DefaultRoot
}

// OSS holds remote object-storage settings.
type OSS struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Prefix    string
	Secure    bool
}

// OSSFromEnv reads remote storage settings from the environment.
// Returns false unless endpoint, bucket and both credentials are all
// set; a partially configured remote is treated as no remote.
func OSSFromEnv() (OSS, bool) {
	cfg := OSS{
		Endpoint:  os.Getenv("DECKVAULT_OSS_ENDPOINT"),
		Bucket:    os.Getenv("DECKVAULT_OSS_BUCKET"),
		AccessKey: os.Getenv("DECKVAULT_OSS_ACCESS_KEY"),
		SecretKey: os.Getenv("DECKVAULT_OSS_SECRET_KEY"),
		Prefix:    cleanPrefix(os.Getenv("DECKVAULT_OSS_PREFIX")),
		Secure:    os.Getenv("DECKVAULT_OSS_SECURE") != "false",
	}
	if cfg.Endpoint == "" || cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return OSS{}, false
	}
	return cfg, true
}

func cleanPrefix(prefix string) string {
	cleaned := strings.Trim(strings.TrimSpace(prefix), "/")
	if cleaned == "" {
		return defaultPrefix
	}
	return cleaned
}
