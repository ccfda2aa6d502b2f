package server

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"teamcollab/internal/domain/errors"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Addr           string
	Port           int
	DBStr          string
	MigratePath    string
	InMemory       bool
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogFile        string
	LogPretty      bool
}

// fileConfig is the JSON shape of the config file. Durations are strings
// such as "24h".
type fileConfig struct {
	Addr           string   `json:"addr"`
	Port           int      `json:"port"`
	DBStr          string   `json:"dbStr"`
	MigratePath    string   `json:"migratePath"`
	InMemory       bool     `json:"inMemory"`
	JWTSecret      string   `json:"jwtSecret"`
	JWTTTL         string   `json:"jwtTTL"`
	AllowedOrigins []string `json:"allowedOrigins"`
	LogLevel       string   `json:"logLevel"`
	LogFile        string   `json:"logFile"`
	LogPretty      *bool    `json:"logPretty"`
}

const (
	defaultAddr        = "0.0.0.0"
	defaultPort        = 8080
	defaultDBStr       = "postgresql://teamcollab:teamcollab@db:5432/teamcollab?sslmode=disable"
	defaultMigratePath = "migrations"
	defaultJWTSecret   = "teamcollab-dev-secret-change-me"
	defaultJWTTTL      = 24 * time.Hour
	defaultLogLevel    = "info"
)

func DefaultConfig() *Config {
	return &Config{
		Addr:           defaultAddr,
		Port:           defaultPort,
		DBStr:          defaultDBStr,
		MigratePath:    defaultMigratePath,
		JWTSecret:      defaultJWTSecret,
		JWTTTL:         defaultJWTTTL,
		AllowedOrigins: []string{"*"},
		LogLevel:       defaultLogLevel,
		LogPretty:      true,
	}
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Addr, c.Port)
}

// ReadConfig layers defaults, the JSON file given by -c or CONFIG, .env and
// the environment, and finally explicitly set command-line flags.
func ReadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("teamcollab", flag.ContinueOnError)
	var (
		addr        = fs.String("addr", defaultAddr, "server address")
		port        = fs.Int("port", defaultPort, "server port")
		dbstr       = fs.String("dbstr", defaultDBStr, "database connection string")
		dbDsn       = fs.String("dbdsn", "", "database DSN, takes precedence over -dbstr")
		migratePath = fs.String("migratepath", defaultMigratePath, "migrations directory")
		inMemory    = fs.Bool("inmemory", false, "use the in-memory store instead of Postgres")
		jwtSecret   = fs.String("jwtsecret", "", "HMAC secret used to sign tokens")
		jwtTTL      = fs.Duration("jwtttl", defaultJWTTTL, "token lifetime")
		origins     = fs.String("origins", "", "comma separated list of allowed CORS origins")
		logLevel    = fs.String("loglevel", defaultLogLevel, "log level")
		logFile     = fs.String("logfile", "", "rotated JSON log file")
		configFile  = fs.String("c", "", "path to a JSON config file")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	configPath := *configFile
	if configPath == "" {
		configPath = os.Getenv("CONFIG")
	}
	if configPath != "" {
		if err := applyJSONConfig(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err == nil {
		log.Debug().Msg(".env loaded")
	}
	applyEnvOverrides(cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "port":
			cfg.Port = *port
		case "dbstr":
			if *dbDsn == "" {
				cfg.DBStr = *dbstr
			}
		case "dbdsn":
			cfg.DBStr = *dbDsn
		case "migratepath":
			cfg.MigratePath = *migratePath
		case "inmemory":
			cfg.InMemory = *inMemory
		case "jwtsecret":
			cfg.JWTSecret = *jwtSecret
		case "jwtttl":
			cfg.JWTTTL = *jwtTTL
		case "origins":
			cfg.AllowedOrigins = splitList(*origins)
		case "loglevel":
			cfg.LogLevel = *logLevel
		case "logfile":
			cfg.LogFile = *logFile
		}
	})

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyJSONConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w %s: %v", errors.ErrConfigFileReadFailed, path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrConfigParseFailed, err)
	}

	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.DBStr != "" {
		cfg.DBStr = fc.DBStr
	}
	if fc.MigratePath != "" {
		cfg.MigratePath = fc.MigratePath
	}
	cfg.InMemory = cfg.InMemory || fc.InMemory
	if fc.JWTSecret != "" {
		cfg.JWTSecret = fc.JWTSecret
	}
	if fc.JWTTTL != "" {
		ttl, err := time.ParseDuration(fc.JWTTTL)
		if err != nil {
			return fmt.Errorf("%w: jwtTTL %q", errors.ErrConfigInvalidFormat, fc.JWTTTL)
		}
		cfg.JWTTTL = ttl
	}
	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.LogPretty != nil {
		cfg.LogPretty = *fc.LogPretty
	}

	log.Info().Str("path", path).Msg("JSON config loaded")
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
			log.Warn().Str("PORT", port).Msg(errors.ErrConfigInvalidFormat.Error())
		} else {
			cfg.Port = p
		}
	}
	if dbStr := os.Getenv("DB_STR"); dbStr != "" {
		cfg.DBStr = dbStr
	}
	if migratePath := os.Getenv("MIGRATE_PATH"); migratePath != "" {
		cfg.MigratePath = migratePath
	}
	if v := os.Getenv("IN_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.InMemory = b
		}
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if ttl := os.Getenv("JWT_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err != nil {
			log.Warn().Str("JWT_TTL", ttl).Msg(errors.ErrConfigInvalidFormat.Error())
		} else {
			cfg.JWTTTL = d
		}
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		cfg.LogFile = file
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogPretty = b
		}
	}

	if cfg.DBStr == defaultDBStr {
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")
		dbHost := os.Getenv("DB_HOST")
		dbPort := os.Getenv("DB_PORT")
		if dbUser != "" && dbPassword != "" && dbName != "" && dbHost != "" && dbPort != "" {
			cfg.DBStr = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, dbHost, dbPort, dbName)
		}
	}
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", errors.ErrConfigInvalidFormat, c.Port)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("%w: jwt ttl must be positive", errors.ErrConfigInvalidFormat)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: empty jwt secret", errors.ErrConfigInvalidFormat)
	}
	if c.JWTSecret == defaultJWTSecret {
		log.Warn().Msg("using the built-in development JWT secret; set JWT_SECRET")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
