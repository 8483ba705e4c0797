package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"crypto_adda/internal/app"
	"crypto_adda/internal/chart"
	"crypto_adda/internal/domain"
	"crypto_adda/internal/infra"
)

const defaultWidth = 80

func main() {
	top := flag.Int("top", 10, "number of coins to print")
	coinID := flag.String("coin", "bitcoin", "coin id whose chart is printed")
	rng := flag.String("range", "7d", "chart range: 7d, 30d or 90d")
	watchlist := flag.Bool("watchlist", false, "print the bookmarked coins as well")
	flag.Parse()

	window, err := domain.ParseWindow(*rng)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	bootstrap := app.NewBootstrap()
	if err := bootstrap.InitializeShared(); err != nil {
		fmt.Fprintln(os.Stderr, "bootstrap failed:", err)
		os.Exit(1)
	}
	defer bootstrap.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	out := newPrinter()
	cache := bootstrap.Cache

	// 1. Coin table
	cache.FetchCoinList(ctx)
	coins := cache.Coins()
	if len(coins) == 0 {
		fmt.Println("No coins found")
		os.Exit(1)
	}
	out.title(fmt.Sprintf("Top %d coins by market cap", min(*top, len(coins))))
	printCoins(out, coins[:min(*top, len(coins))])

	// 2. Watchlist
	if *watchlist {
		fmt.Println()
		out.title("Watchlist")
		listed := bootstrap.Bookmarks.ListBookmarked(ctx, coins)
		if len(listed) == 0 {
			fmt.Println("No bookmarked coins found.")
		} else {
			printCoins(out, listed)
		}
	}

	// 3. Chart
	fmt.Println()
	cache.FetchPriceHistory(ctx, *coinID)
	series, _ := cache.PriceHistory(*coinID)
	loc := bootstrap.Config.DateLocation()
	points := chart.FilterRange(series, window, time.Now().In(loc))

	out.title(fmt.Sprintf("%s, %s", *coinID, window.Label()))
	switch {
	case len(series) == 0:
		fmt.Println("No data available.")
	case len(points) == 0:
		fmt.Println("No prices in this range.")
	default:
		printChart(out, points)
	}
}

type printer struct {
	color bool
	width int
}

func newPrinter() printer {
	fd := int(os.Stdout.Fd())
	p := printer{width: defaultWidth}
	if term.IsTerminal(fd) {
		p.color = true
		if w, _, err := term.GetSize(fd); err == nil && w > 40 {
			p.width = w
		}
	}
	return p
}

func (p printer) paint(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + infra.ColorReset
}

func (p printer) title(s string) {
	fmt.Println(p.paint(infra.ColorCyan, "== "+s+" =="))
}

func printCoins(p printer, coins []domain.Coin) {
	fmt.Printf("%4s  %-22s %16s %9s %20s\n", "#", "Name", "Price", "24h", "Market cap")
	for _, c := range coins {
		change := decimal.NewFromFloat(c.PriceChangePercentage24h).StringFixed(2) + "%"
		switch c.ChangeDirection() {
		case "positive":
			change = p.paint(infra.ColorGreen, fmt.Sprintf("%9s", change))
		case "negative":
			change = p.paint(infra.ColorRed, fmt.Sprintf("%9s", change))
		default:
			change = fmt.Sprintf("%9s", change)
		}
		fmt.Printf("%4d  %-22s %16s %s %20s\n",
			c.MarketCapRank,
			truncate(c.Name, 22),
			"$"+formatPrice(c.CurrentPrice),
			change,
			"$"+groupThousands(decimal.NewFromFloat(c.MarketCap).Round(0).String()))
	}
}

func printChart(p printer, points []chart.ChartPoint) {
	lo, hi := points[0].Price, points[0].Price
	for _, pt := range points {
		lo = min(lo, pt.Price)
		hi = max(hi, pt.Price)
	}

	barWidth := p.width - 32
	if barWidth < 10 {
		barWidth = 10
	}

	for _, pt := range points {
		n := 1
		if hi > lo {
			n = 1 + int(float64(barWidth-1)*(pt.Price-lo)/(hi-lo))
		}
		fmt.Printf("%-13s %16s %s\n",
			chart.TooltipLabel(pt.Time),
			"$"+formatPrice(pt.Price),
			p.paint(infra.ColorGreen, strings.Repeat("#", n)))
	}
}

// formatPrice shows two decimals above one dollar and six below.
func formatPrice(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		return d.StringFixed(6)
	}
	s := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	return groupThousands(intPart) + "." + frac
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
