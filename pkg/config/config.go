// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envEnvFile                = "POWERAPP_ENV_FILE"
	envRegisterFlowURL        = "POWERAPP_REGISTER_FLOW_URL"
	envListFlowURL            = "POWERAPP_FLOW_URL"
	envFlowKey                = "POWERAPP_FLOW_KEY"
	envFlowKeyParam           = "POWERAPP_FLOW_KEY_PARAM"
	envListFlowMethod         = "POWERAPP_FLOW_LIST_METHOD"
	envListenAddr             = "POWERAPP_LISTEN_ADDR"
	envRequestTimeout         = "POWERAPP_REQUEST_TIMEOUT"
	envInsecureSkipVerify     = "POWERAPP_FLOW_INSECURE"
	envLogLevel               = "POWERAPP_LOG_LEVEL"
	envServerReadTimeout      = "POWERAPP_SERVER_READ_TIMEOUT"
	envServerWriteTimeout     = "POWERAPP_SERVER_WRITE_TIMEOUT"
	envServerIdleTimeout      = "POWERAPP_SERVER_IDLE_TIMEOUT"
	envGracefulShutdown       = "POWERAPP_GRACEFUL_SHUTDOWN"
	defaultEnvFile            = ".env"
	defaultFlowKeyParam       = "sig"
	defaultListFlowMethod     = http.MethodPost
	defaultListenAddr         = "127.0.0.1:8080"
	defaultRequestTimeout     = 30 * time.Second
	defaultLogLevel           = "info"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerIdleTimeout  = 120 * time.Second
	defaultGracefulShutdown   = 10 * time.Second
)

// Setting names reported when a flow URL is missing at request time.
const (
	SettingRegisterFlowURL = envRegisterFlowURL
	SettingListFlowURL     = envListFlowURL
)

// Config captures runtime settings for the gateway. It is built once at
// startup and handed to every component that needs it.
type Config struct {
	// RegisterFlowURL and ListFlowURL are optional at load time; a nil value
	// is reported per request as a configuration error.
	RegisterFlowURL         *url.URL
	ListFlowURL             *url.URL
	FlowKey                 string
	FlowKeyParam            string
	ListFlowMethod          string
	ListenAddr              string
	RequestTimeout          time.Duration
	InsecureSkipVerify      bool
	LogLevel                string
	ServerReadTimeout       time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	GracefulShutdownTimeout time.Duration
}

// Load seeds the environment from an optional .env file, then reads and
// validates configuration from environment variables.
func Load() (Config, error) {
	if err := loadEnvFile(getString(envEnvFile, defaultEnvFile)); err != nil {
		return Config{}, err
	}

	registerURL, err := getURL(envRegisterFlowURL)
	if err != nil {
		return Config{}, err
	}
	listURL, err := getURL(envListFlowURL)
	if err != nil {
		return Config{}, err
	}

	method := strings.ToUpper(getString(envListFlowMethod, defaultListFlowMethod))
	if method != http.MethodGet && method != http.MethodPost {
		return Config{}, fmt.Errorf("%s must be GET or POST, got %q", envListFlowMethod, method)
	}

	cfg := Config{
		RegisterFlowURL:         registerURL,
		ListFlowURL:             listURL,
		FlowKey:                 strings.TrimSpace(os.Getenv(envFlowKey)),
		FlowKeyParam:            getString(envFlowKeyParam, defaultFlowKeyParam),
		ListFlowMethod:          method,
		ListenAddr:              getString(envListenAddr, defaultListenAddr),
		RequestTimeout:          getDuration(envRequestTimeout, defaultRequestTimeout),
		InsecureSkipVerify:      getBool(envInsecureSkipVerify, false),
		LogLevel:                strings.ToLower(getString(envLogLevel, defaultLogLevel)),
		ServerReadTimeout:       getDuration(envServerReadTimeout, defaultServerReadTimeout),
		ServerWriteTimeout:      getDuration(envServerWriteTimeout, defaultServerWriteTimeout),
		ServerIdleTimeout:       getDuration(envServerIdleTimeout, defaultServerIdleTimeout),
		GracefulShutdownTimeout: getDuration(envGracefulShutdown, defaultGracefulShutdown),
	}

	return cfg, nil
}

// loadEnvFile applies path without overriding variables already set in the
// process environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func getURL(key string) (*url.URL, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%s must be absolute (scheme://host)", key)
	}
	return u, nil
}

func getString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
