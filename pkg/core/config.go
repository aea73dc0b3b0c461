package core

import (
	"fmt"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

// DefaultBaseURL is the production OVEX API endpoint.
const DefaultBaseURL = "https://www.ovex.io/api/v2"

// Credentials holds API authentication material. It is immutable once
// constructed and never printed or serialized in clear.
type Credentials struct {
	apiKeyID  string
	secretKey string
}

// NewCredentials creates credentials from an API key id and its secret.
func NewCredentials(apiKeyID, secretKey string) *Credentials {
	return &Credentials{apiKeyID: apiKeyID, secretKey: secretKey}
}

// APIKeyID returns the public key identifier.
func (c *Credentials) APIKeyID() string {
	if c == nil {
		return ""
	}
	return c.apiKeyID
}

// SecretKey returns the signing secret.
func (c *Credentials) SecretKey() string {
	if c == nil {
		return ""
	}
	return c.secretKey
}

// CanSign reports whether both the key id and secret are present.
func (c *Credentials) CanSign() bool {
	return c != nil && c.apiKeyID != "" && c.secretKey != ""
}

func (c *Credentials) String() string {
	return fmt.Sprintf("Credentials{APIKeyID:%s, SecretKey:%s}", MaskKey(c.APIKeyID()), redacted(c.SecretKey()))
}

// GoString keeps %#v from dumping the secret.
func (c *Credentials) GoString() string {
	return c.String()
}

// MarshalJSON emits only the masked key id.
func (c *Credentials) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(map[string]string{"api_key_id": MaskKey(c.APIKeyID())})
}

// MaskKey hides all but the first and last four characters of key.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

func redacted(secret string) string {
	if secret == "" {
		return "<none>"
	}
	return "<redacted>"
}

// Config contains the options of a client.
type Config struct {
	BaseURL     string       `json:"base_url" validate:"required,url"`
	Credentials *Credentials `json:"credentials,omitempty"`

	// Timeout bounds a single HTTP attempt, including reading the body.
	Timeout   time.Duration `json:"timeout" validate:"min=1ms"`
	UserAgent string        `json:"user_agent"`

	// LogLevel, when set, caps the client logger. Empty keeps the level of
	// the logger passed in.
	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config for the production endpoint with a 10s
// timeout, no credentials and no log level override.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   10 * time.Second,
		UserAgent: "ovex-go",
	}
}

var validate = validator.New()

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return NewConfigurationError(ErrCodeInvalidConfig, "invalid config", err)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return NewConfigurationError(ErrCodeInvalidConfig, "invalid base url", err)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return NewConfigurationError(ErrCodeInvalidConfig, "base url must not carry a query or fragment", nil)
	}
	return nil
}

// BasePath returns the path component of the base URL without a trailing slash.
func (c *Config) BasePath() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	path := u.Path
	for len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithBaseURL sets the API base URL and returns the config for chaining.
func (c *Config) WithBaseURL(baseURL string) *Config {
	c.BaseURL = baseURL
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithLogLevel sets the log level and returns the config for chaining.
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}
