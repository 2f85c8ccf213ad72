package config

import (
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/gravitational/trace"
)

// Config aggregates all runtime settings, parsed once at startup and passed
// explicitly into every component.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"ENV" envDefault:"DEVELOPMENT"`

	// UserID is the key under which the single logical user's tokens are
	// stored. Threading it through instead of hardcoding "default" keeps
	// multi-user support a pure extension.
	UserID string `env:"APP_USER_ID" envDefault:"default"`

	Redis  Redis
	Google Google
}

// Redis holds connection settings for the key-value store.
type Redis struct {
	Host string `env:"REDIS_HOST" envDefault:"localhost:6379"`
	Pass string `env:"REDIS_PASS"`
	DB   int    `env:"REDIS_DB" envDefault:"0"`
}

// Google holds OAuth credentials and API endpoints. The endpoint URLs
// default to production and are overridable so tests can point the clients
// at local servers.
type Google struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	RedirectURI  string `env:"GOOGLE_REDIRECT_URI,required,notEmpty"`

	AuthURL    string `env:"GOOGLE_AUTH_URL" envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL   string `env:"GOOGLE_TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
	RevokeURL  string `env:"GOOGLE_REVOKE_URL" envDefault:"https://oauth2.googleapis.com/revoke"`
	PickerURL  string `env:"GOOGLE_PICKER_URL" envDefault:"https://photospicker.googleapis.com/v1"`
	LibraryURL string `env:"GOOGLE_LIBRARY_URL" envDefault:"https://photoslibrary.googleapis.com/v1"`
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, trace.Wrap(err, "failed to parse environment")
	}

	if _, err := url.ParseRequestURI(cfg.Google.RedirectURI); err != nil {
		return nil, trace.BadParameter("GOOGLE_REDIRECT_URI must be a valid URL: %v", err)
	}

	return &cfg, nil
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return c.Env == "PRODUCTION"
}
