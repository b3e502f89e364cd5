// Package config charge la configuration : valeurs par défaut → config.yaml → variables DELUPO_*.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar surcharge le chemin du fichier de configuration.
const PathEnvVar = "CONFIG_PATH"

// EnvPrefix préfixe toutes les variables d'environnement lues.
const EnvPrefix = "DELUPO_"

// DefaultPaths : premier fichier trouvé utilisé.
var DefaultPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	API       APIConfig       `koanf:"api"`
	Source    SourceConfig    `koanf:"source"`
	Database  DatabaseConfig  `koanf:"database"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type APIConfig struct {
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// SourceConfig : Kind vaut http, dir ou mysql.
type SourceConfig struct {
	Kind string `koanf:"kind"`
	Dir  string `koanf:"dir"`
}

type DatabaseConfig struct {
	DSN   string `koanf:"dsn"`
	Table string `koanf:"table"`
}

// DashboardConfig : fuseau des périodes, fenêtres par défaut des vues, objectifs de part.
type DashboardConfig struct {
	Timezone        string  `koanf:"timezone"`
	OrdersDays      int     `koanf:"orders_days"`
	ClientsMonths   int     `koanf:"clients_months"`
	ProductsMonths  int     `koanf:"products_months"`
	RetentionMonths int     `koanf:"retention_months"`
	NewTarget       float64 `koanf:"new_target"`
	ReturningTarget float64 `koanf:"returning_target"`
	TopCustomers    int     `koanf:"top_customers"`
	TopProducts     int     `koanf:"top_products"`
	// Concurrency : requêtes simultanées vers la source.
	Concurrency int `koanf:"concurrency"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default renvoie la configuration par défaut.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:3000",
			Timeout:   15 * time.Second,
			CacheSize: 64,
			CacheTTL:  time.Minute,
		},
		Source: SourceConfig{Kind: "http", Dir: "data"},
		Database: DatabaseConfig{
			Table: "CustomerEventData",
		},
		Dashboard: DashboardConfig{
			Timezone:        "America/Sao_Paulo",
			OrdersDays:      30,
			ClientsMonths:   3,
			ProductsMonths:  3,
			RetentionMonths: 6,
			NewTarget:       0.2,
			ReturningTarget: 0.2,
			TopCustomers:    10,
			TopProducts:     20,
			Concurrency:     4,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load lit la configuration. path vide : CONFIG_PATH puis DefaultPaths.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate vérifie ce que les providers ne peuvent pas garantir.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "http", "dir", "mysql":
	default:
		return fmt.Errorf("source.kind invalide %q (http|dir|mysql)", c.Source.Kind)
	}
	if c.Source.Kind == "mysql" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn requis pour source.kind=mysql")
	}
	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		return fmt.Errorf("dashboard.timezone: %w", err)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout doit être > 0")
	}
	if c.Dashboard.Concurrency < 1 {
		return fmt.Errorf("dashboard.concurrency doit être >= 1")
	}
	for name, v := range map[string]float64{
		"dashboard.new_target":       c.Dashboard.NewTarget,
		"dashboard.returning_target": c.Dashboard.ReturningTarget,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s hors de [0,1]: %v", name, v)
		}
	}
	return nil
}

// Location renvoie le fuseau du tableau de bord (validé au chargement).
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sections connues : DELUPO_API_BASE_URL -> api.base_url
var sections = []string{"api", "source", "database", "dashboard", "logging"}

// envKey traduit une variable DELUPO_* en chemin koanf ; "" l'ignore.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(key, s+"_"); ok && rest != "" {
			return s + "." + rest
		}
	}
	return ""
}
