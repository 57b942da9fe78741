package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

// Config holds the storefront options
type Config struct {
	Addr         string   `long:"addr" env:"ADDR" default:":5005" description:"Listen address"`
	ProductAPI   string   `long:"product-api" env:"PRODUCT_API" default:"https://localhost:4445" description:"Product API base URL"`
	IdentityURL  string   `long:"identity-url" env:"IDENTITY_URL" default:"https://localhost:4435" description:"Identity server base URL"`
	ClientID     string   `long:"client-id" env:"CLIENT_ID" default:"geekshopping_web" description:"OAuth2 client id"`
	ClientSecret string   `long:"client-secret" env:"CLIENT_SECRET" default:"geekshopping_web_secret" description:"OAuth2 client secret"`
	Scopes       []string `long:"scope" env:"SCOPES" env-delim:"," default:"openid" default:"profile" default:"email" default:"geek_shopping" description:"Scopes requested at login"`
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
