// Package exchange holds the connection settings handed to the engine's
// exchange adapter. The wire protocol belongs to the engine.
package exchange

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingKey    = errors.New("exchange: api key is required")
	ErrMissingSecret = errors.New("exchange: api secret is required")
	ErrMissingSymbol = errors.New("exchange: symbol is required")
)

type Config struct {
	APIKey    string
	APISecret string
	Symbol    string
}

// Adapter carries validated credentials and the traded symbol.
type Adapter struct {
	cfg Config
}

func New(cfg Config) (*Adapter, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.APISecret = strings.TrimSpace(cfg.APISecret)
	cfg.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Symbol))

	switch {
	case cfg.APIKey == "":
		return nil, ErrMissingKey
	case cfg.APISecret == "":
		return nil, ErrMissingSecret
	case cfg.Symbol == "":
		return nil, ErrMissingSymbol
	}
	return &Adapter{cfg: cfg}, nil
}

func (a *Adapter) Symbol() string    { return a.cfg.Symbol }
func (a *Adapter) APIKey() string    { return a.cfg.APIKey }
func (a *Adapter) APISecret() string { return a.cfg.APISecret }

// String never prints the secret, and only the first four key characters.
func (a *Adapter) String() string {
	return fmt.Sprintf("adapter(symbol=%s key=%s)", a.cfg.Symbol, redact(a.cfg.APIKey))
}

func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
