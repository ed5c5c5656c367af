package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	upstream, err := loadUpstreamConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Upstream: upstream}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// UpstreamConfig describes the processing backend the gateway proxies to.
// ProbeTimeout bounds the reachability check; ForwardTimeout bounds the
// proxied call.
type UpstreamConfig struct {
	URL            string
	ProbeTimeout   time.Duration
	ForwardTimeout time.Duration
}

func loadUpstreamConfig() (UpstreamConfig, error) {
	probeSeconds, err := parseOptionalIntEnv("UPSTREAM_PROBE_TIMEOUT")
	if err != nil {
		return UpstreamConfig{}, err
	}
	probe := 5 * time.Second
	if probeSeconds != nil {
		if *probeSeconds < 1 {
			return UpstreamConfig{}, fmt.Errorf("UPSTREAM_PROBE_TIMEOUT must be at least 1 second")
		}
		probe = time.Duration(*probeSeconds) * time.Second
	}

	forwardSeconds, err := parseOptionalIntEnv("UPSTREAM_TIMEOUT")
	if err != nil {
		return UpstreamConfig{}, err
	}
	forward := 30 * time.Second
	if forwardSeconds != nil {
		if *forwardSeconds < 1 {
			return UpstreamConfig{}, fmt.Errorf("UPSTREAM_TIMEOUT must be at least 1 second")
		}
		forward = time.Duration(*forwardSeconds) * time.Second
	}

	url := getEnvOrDefault("UPSTREAM_URL", "http://127.0.0.1:9000")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return UpstreamConfig{}, fmt.Errorf("invalid UPSTREAM_URL value: %q", url)
	}

	return UpstreamConfig{
		URL:            strings.TrimRight(url, "/"),
		ProbeTimeout:   probe,
		ForwardTimeout: forward,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
