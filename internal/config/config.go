package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

// BackendMode selects the storage and identity implementations.
type BackendMode string

const (
	// BackendLocal keeps everything in process memory and verifies passwords
	// against seeded local accounts.
	BackendLocal BackendMode = "local"
	// BackendHosted uses MongoDB and the hosted identity provider.
	BackendHosted BackendMode = "hosted"
)

func (m BackendMode) Valid() bool {
	return m == BackendLocal || m == BackendHosted
}

type LocalUser struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	Disabled    bool   `yaml:"disabled"`
}

type Config struct {
	Env         string      `yaml:"env" env:"APP_ENV" env-default:"local"`
	BackendMode BackendMode `yaml:"backend_mode" env:"BACKEND_MODE" env-default:"local"`
	Listen      struct {
		BindIP         string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port           string `yaml:"port" env:"LISTEN_PORT" env-default:"9100"`
		TimeoutSeconds int    `yaml:"timeout_seconds" env-default:"10"`
	} `yaml:"listen"`
	Mongo struct {
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:""`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"eduportal"`
	} `yaml:"mongo"`
	Identity struct {
		TokenURL     string   `yaml:"token_url" env:"IDENTITY_TOKEN_URL" env-default:""`
		UserInfoURL  string   `yaml:"userinfo_url" env:"IDENTITY_USERINFO_URL" env-default:""`
		ClientID     string   `yaml:"client_id" env:"IDENTITY_CLIENT_ID" env-default:""`
		ClientSecret string   `yaml:"client_secret" env:"IDENTITY_CLIENT_SECRET" env-default:""`
		Scopes       []string `yaml:"scopes" env-default:"openid,email,profile"`
	} `yaml:"identity"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"EduPortalBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	Audit struct {
		Attempts int `yaml:"attempts" env-default:"3"`
		// SinkTimeoutMs bounds all attempts against one sink.
		SinkTimeoutMs int `yaml:"sink_timeout_ms" env-default:"2000"`
	} `yaml:"audit"`
	// SeedFile lists franchisors, schools and memberships loaded at startup.
	SeedFile   string      `yaml:"seed_file" env:"SEED_FILE" env-default:""`
	LocalUsers []LocalUser `yaml:"local_users"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
		if err = instance.Validate(); err != nil {
			log.Fatal(err)
		}
	})
	return instance
}

// Validate checks combinations cleanenv cannot express with tags.
func (c *Config) Validate() error {
	if !c.BackendMode.Valid() {
		return fmt.Errorf("invalid backend_mode %q: must be %q or %q", c.BackendMode, BackendLocal, BackendHosted)
	}
	if c.BackendMode == BackendHosted {
		if c.Identity.TokenURL == "" || c.Identity.UserInfoURL == "" {
			return fmt.Errorf("backend_mode %q requires identity.token_url and identity.userinfo_url", BackendHosted)
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("backend_mode %q requires mongo.database", BackendHosted)
		}
	}
	if c.Audit.Attempts < 1 {
		return fmt.Errorf("audit.attempts must be at least 1")
	}
	return nil
}
