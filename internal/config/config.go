package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source names one ontology to load. Name is optional and defaults to the
// cache filename derived from the URL.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type Config struct {
	Cache struct {
		Dir                string `yaml:"dir"`
		HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	} `yaml:"cache"`
	Ontology struct {
		Sources []Source `yaml:"sources"`
	} `yaml:"ontology"`
	Fuzzy struct {
		BaseCutoff int `yaml:"base_cutoff"`
		MinCutoff  int `yaml:"min_cutoff"`
		MaxCutoff  int `yaml:"max_cutoff"`
	} `yaml:"fuzzy"`
	Validation struct {
		StrongDistance int `yaml:"strong_distance"`
	} `yaml:"validation"`
	Prediction struct {
		Strategy string `yaml:"strategy"`
		TopK     int    `yaml:"top_k"`
	} `yaml:"prediction"`
	Neo4j struct {
		URI      string `yaml:"uri"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
	} `yaml:"neo4j"`
	LogMode string `yaml:"log_mode"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Cache.Dir = "cache_ontologies"
	cfg.Cache.HTTPTimeoutSeconds = 30
	cfg.Fuzzy.BaseCutoff = 85
	cfg.Fuzzy.MinCutoff = 50
	cfg.Fuzzy.MaxCutoff = 98
	cfg.Validation.StrongDistance = 5
	cfg.Prediction.Strategy = "common_neighbors"
	cfg.Prediction.TopK = 20
	cfg.LogMode = "dev"
	return cfg
}

// LoadConfig reads the YAML config at path, applying defaults for anything
// the file leaves unset. A missing file is not an error; defaults plus
// environment overrides are returned instead.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := DefaultConfig()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if dir := os.Getenv("LITKG_CACHE_DIR"); dir != "" {
		cfg.Cache.Dir = dir
	}
	if uri := os.Getenv("LITKG_NEO4J_URI"); uri != "" {
		cfg.Neo4j.URI = uri
	}
	if user := os.Getenv("LITKG_NEO4J_USER"); user != "" {
		cfg.Neo4j.User = user
	}
	if password := os.Getenv("LITKG_NEO4J_PASSWORD"); password != "" {
		cfg.Neo4j.Password = password
	}
	if database := os.Getenv("LITKG_NEO4J_DATABASE"); database != "" {
		cfg.Neo4j.Database = database
	}
	if mode := os.Getenv("LITKG_LOG_MODE"); mode != "" {
		cfg.LogMode = mode
	}

	applyBounds(cfg)
	return cfg, nil
}

// applyBounds snaps out-of-range knobs back to usable values.
func applyBounds(cfg *Config) {
	if cfg.Cache.HTTPTimeoutSeconds <= 0 {
		cfg.Cache.HTTPTimeoutSeconds = 30
	}
	if cfg.Fuzzy.MinCutoff <= 0 {
		cfg.Fuzzy.MinCutoff = 50
	}
	if cfg.Fuzzy.MaxCutoff <= 0 || cfg.Fuzzy.MaxCutoff > 100 {
		cfg.Fuzzy.MaxCutoff = 98
	}
	if cfg.Fuzzy.BaseCutoff <= 0 {
		cfg.Fuzzy.BaseCutoff = 85
	}
	if cfg.Validation.StrongDistance <= 0 {
		cfg.Validation.StrongDistance = 5
	}
	if cfg.Prediction.TopK <= 0 {
		cfg.Prediction.TopK = 20
	}
	if cfg.Prediction.Strategy == "" {
		cfg.Prediction.Strategy = "common_neighbors"
	}
}
