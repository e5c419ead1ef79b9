package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvAPIKey    = "ASTER_API_KEY"
	EnvAPISecret = "ASTER_API_SECRET"
	EnvLogLevel  = "TRENDRUNNER_LOG_LEVEL"
)

// ErrMissingCredentials means one or both exchange secrets are unset.
var ErrMissingCredentials = errors.New("missing exchange credentials")

// Credentials are the exchange API secrets. They are only checked for
// presence here.
type Credentials struct {
	APIKey    string
	APISecret string
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{APIKey: %s, APISecret: %s}", redact(c.APIKey), redact(c.APISecret))
}

func redact(s string) string {
	if s == "" {
		return "<unset>"
	}
	return "<redacted>"
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are given) into the process environment. Variables that are already set
// win, and a missing file is not an error.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file: %w", err)
}

// CredentialsFromEnv reads the exchange secrets through getenv, normally
// os.Getenv. Blank values count as missing.
func CredentialsFromEnv(getenv func(string) string) (Credentials, error) {
	c := Credentials{
		APIKey:    strings.TrimSpace(getenv(EnvAPIKey)),
		APISecret: strings.TrimSpace(getenv(EnvAPISecret)),
	}

	var missing []string
	if c.APIKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if c.APISecret == "" {
		missing = append(missing, EnvAPISecret)
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: %s not set", ErrMissingCredentials, strings.Join(missing, " and "))
	}
	return c, nil
}
