package infra

import (
	"fmt"
	"strings"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with the provider and storage in use
func PrintBanner(cfg *Config) {
	color := ColorGreen
	keyDesc := "PUBLIC (no API key)"
	if cfg.API.CoinGecko.APIKey != "" {
		color = ColorCyan
		keyDesc = "DEMO API KEY"
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#               📈 CryptoAdda Market Dashboard            #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   LISTEN:  %-44s #%s\n", color, cfg.Server.Addr, ColorReset)
	fmt.Printf("%s#   ACCESS:  %-44s #%s\n", color, keyDesc, ColorReset)
	fmt.Printf("%s#   STORAGE: %-44s #%s\n", color, strings.ToUpper(cfg.Storage.Driver), ColorReset)
	fmt.Printf("%s#   VERSION: %-44s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)

	if cfg.API.CoinGecko.APIKey == "" {
		fmt.Printf("%s#   ⚠️  Public tier is heavily rate limited.             #%s\n", ColorYellow, ColorReset)
		fmt.Printf("%s#   Set CRYPTO_CG_API_KEY for the demo tier.              #%s\n", ColorYellow, ColorReset)
	}

	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
