package config

import (
	"errors"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
// Both commands share it; each reads only the fields it needs.
type Config struct {
	HTMLPath      string
	SourceURL     string
	JSONPath      string
	CSVPath       string
	ChromeBin     string
	RenderTimeout time.Duration

	DBDriver         string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string
	BootstrapSchema  bool

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		HTMLPath:      getEnv("TKPI_HTML_PATH", "docs/tkpi-2019-hal1.html"),
		SourceURL:     getEnv("TKPI_SOURCE_URL", ""),
		JSONPath:      getEnv("TKPI_JSON_PATH", "docs/tkpi-komposisi-1.json"),
		CSVPath:       getEnv("TKPI_CSV_PATH", ""),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		RenderTimeout: time.Duration(getEnvInt("RENDER_TIMEOUT_SEC", 60)) * time.Second,

		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", ""),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "jagagizi_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "tkpi.db"),
		BootstrapSchema:  getEnvBool("DB_BOOTSTRAP_SCHEMA", false),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// ValidateDB checks that the database settings are usable. Credentials are
// never compiled in, so a postgres target must get them from the environment.
func (c *Config) ValidateDB() error {
	switch c.DBDriver {
	case DriverPostgres:
		var missing []string
		if c.PostgresUser == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if c.PostgresPassword == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if len(missing) > 0 {
			return errors.New("config: missing " + strings.Join(missing, ", "))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("config: missing SQLITE_PATH")
		}
	default:
		return errors.New("config: unsupported DB_DRIVER " + strconv.Quote(c.DBDriver))
	}
	return nil
}

// DSN returns the connection string for the configured driver. Postgres
// gets a postgres:// URL so credentials may hold any character; the SQLite
// path is percent-escaped into a file: URI.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return "file:" + sqlitePathEscaper.Replace(c.SQLitePath) + "?_pragma=foreign_keys(1)"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: url.Values{"sslmode": {c.PostgresSSLMode}}.Encode(),
	}
	return u.String()
}

// sqlitePathEscaper escapes the characters SQLite's URI parser treats as
// delimiters or escapes.
var sqlitePathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// Debug reports whether DEBUG lines should be printed.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
