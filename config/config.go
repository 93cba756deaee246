package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the agent
type Config struct {
	// Server settings
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Security
	AllowedOrigins []string
	RateLimitRPS   int

	// Logging and metrics
	LogLevel       string
	MetricsEnabled bool

	// Probes
	PythonBin       string
	NvidiaSMI       string
	CPUSampleWindow time.Duration
	ProbeTimeout    time.Duration

	EnvFile string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Determine .env file path
	envFile := getEnvFile()

	// Load .env file if it exists
	_ = godotenv.Load(envFile)

	cfg := &Config{
		Port:            getEnvInt("PORT", 8190),
		Host:            getEnv("HOST", "0.0.0.0"),
		ReadTimeout:     getEnvSeconds("READ_TIMEOUT_SECONDS", 30),
		WriteTimeout:    getEnvSeconds("WRITE_TIMEOUT_SECONDS", 60),
		AllowedOrigins:  getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 100),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		PythonBin:       getEnv("PYTHON_BIN", defaultPython()),
		NvidiaSMI:       getEnv("NVIDIA_SMI", "nvidia-smi"),
		CPUSampleWindow: time.Duration(getEnvInt("CPU_SAMPLE_MS", 100)) * time.Millisecond,
		ProbeTimeout:    getEnvSeconds("PROBE_TIMEOUT_SECONDS", 60),
		EnvFile:         envFile,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that settings are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.PythonBin == "" {
		return fmt.Errorf("PYTHON_BIN must not be empty")
	}
	if c.CPUSampleWindow <= 0 {
		return fmt.Errorf("CPU_SAMPLE_MS must be positive")
	}
	return nil
}

// getEnvFile returns the path to the .env file
func getEnvFile() string {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return envFile
	}

	// Try to find .env in current directory or executable directory
	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}

	exe, err := os.Executable()
	if err == nil {
		envPath := filepath.Join(filepath.Dir(exe), ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	return ".env"
}

func defaultPython() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// LoadWithDefaults loads config with defaults for testing
func LoadWithDefaults() *Config {
	return &Config{
		Port:            8190,
		Host:            "0.0.0.0",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		AllowedOrigins:  []string{"*"},
		RateLimitRPS:    100,
		LogLevel:        "info",
		MetricsEnabled:  true,
		PythonBin:       defaultPython(),
		NvidiaSMI:       "nvidia-smi",
		CPUSampleWindow: 100 * time.Millisecond,
		ProbeTimeout:    60 * time.Second,
	}
}

// Addr returns the server address string
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
