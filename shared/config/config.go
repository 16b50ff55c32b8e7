package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	ThreadsPerPage int `yaml:"threads_per_page" validate:"required,gt=0"`
	UsersPerPage   int `yaml:"users_per_page" validate:"required,gt=0"`
	MaxPageSize    int `yaml:"max_page_size" validate:"required,gtefield=ThreadsPerPage,gtefield=UsersPerPage"`

	MinTextLength int `yaml:"min_text_length" validate:"gte=1"`
	MaxTextLength int `yaml:"max_text_length" validate:"required,gtefield=MinTextLength"`

	// 0 disables the background children reconciler
	ChildrenRepairInterval time.Duration `yaml:"children_repair_interval" validate:"gte=0"`
	// lifetime of a cached GET response; invalidation usually comes first
	ViewCacheTTL time.Duration `yaml:"view_cache_ttl" validate:"gte=0"`

	CorsOrigins   []string `yaml:"cors_origins"`
	SecureHeaders bool     `yaml:"secure_headers"`
	LogLevel      string   `yaml:"log_level"`
	LogJSON       bool     `yaml:"log_json"`
	AutoMigrate   bool     `yaml:"auto_migrate"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type Private struct {
	Pg Pg `yaml:"pg"`
	// HS256 key shared with the identity provider that signs bearer tokens
	IdentityKey string `yaml:"identity_key" validate:"required"`
	// empty disables the redis view cache
	RedisURL string `yaml:"redis_url"`
}

func (c *Config) IdentityKey() string {
	return c.Private.IdentityKey
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return fmt.Errorf("invalid public config: %w", err)
	}
	if err := validate.Struct(c.Private); err != nil {
		return fmt.Errorf("invalid private config: %w", err)
	}
	return nil
}
