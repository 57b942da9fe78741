package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

// Config holds the product API options
type Config struct {
	Addr       string `long:"addr" env:"ADDR" default:":4445" description:"Listen address"`
	IssuerURL  string `long:"issuer-url" env:"ISSUER_URL" default:"https://localhost:4435" description:"Trusted token issuer"`
	SigningKey string `long:"signing-key" env:"SIGNING_KEY" default:"geekshopping-dev-signing-key" description:"HS256 token signing key"`
	DSN        string `long:"dsn" env:"DSN" default:"file:product.db?cache=shared&mode=rwc" description:"SQLite DSN"`
	SkipSeed   bool   `long:"skip-seed" env:"SKIP_SEED" description:"Skip the demo catalog seed"`
}

// LoadConfig parses configuration from environment variables and command line flags
func LoadConfig() (*Config, error) {
	var config Config

	parser := flags.NewParser(&config, flags.Default)
	parser.Usage = "[OPTIONS]"

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}
