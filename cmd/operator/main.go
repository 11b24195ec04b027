// cmd/operator is the minimal CLI surface (§6): cache warm, cache flush
// by tag, force pricing recompute for a hotel, run the loyalty expiry
// scan now. Each subcommand prints the same {ok, affected} result the
// equivalent cmd/server operator HTTP hook returns.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"hotelcore/internal/app"
	"hotelcore/internal/shared/config"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	a, err := app.Bootstrap(cfg)
	if err != nil {
		fmt.Println("bootstrap failed:", err)
		os.Exit(1)
	}
	defer a.DB.Close()

	ctx := context.Background()

	switch os.Args[1] {
	case "cache-warm":
		runCacheWarm(ctx, a, os.Args[2:])
	case "cache-flush":
		runCacheFlush(ctx, a, os.Args[2:])
	case "pricing-recompute":
		runPricingRecompute(ctx, a, os.Args[2:])
	case "loyalty-expiry-scan":
		runLoyaltyExpiryScan(ctx, a)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`usage: operator <command> [flags]

commands:
  cache-warm -hotel <id> [-days N]
  cache-flush -tag <pattern>
  pricing-recompute -hotel <id> [-days N]
  loyalty-expiry-scan`)
}

func runCacheWarm(ctx context.Context, a *app.App, args []string) {
	fs := flag.NewFlagSet("cache-warm", flag.ExitOnError)
	hotelID := fs.String("hotel", "", "hotel id")
	days := fs.Int("days", 14, "horizon in days")
	fs.Parse(args)

	id, err := uuid.Parse(*hotelID)
	if err != nil {
		exitErr(fmt.Errorf("invalid -hotel: %w", err))
	}

	result, err := a.WarmCache(ctx, id, *days)
	printResult(result, err)
}

func runCacheFlush(ctx context.Context, a *app.App, args []string) {
	fs := flag.NewFlagSet("cache-flush", flag.ExitOnError)
	tag := fs.String("tag", "", "cache key pattern to invalidate")
	fs.Parse(args)

	if *tag == "" {
		exitErr(fmt.Errorf("-tag is required"))
	}

	result, err := a.FlushCacheTag(ctx, *tag)
	printResult(result, err)
}

func runPricingRecompute(ctx context.Context, a *app.App, args []string) {
	fs := flag.NewFlagSet("pricing-recompute", flag.ExitOnError)
	hotelID := fs.String("hotel", "", "hotel id")
	days := fs.Int("days", 14, "horizon in days")
	fs.Parse(args)

	id, err := uuid.Parse(*hotelID)
	if err != nil {
		exitErr(fmt.Errorf("invalid -hotel: %w", err))
	}

	result, err := a.RecomputePricing(ctx, id, *days)
	printResult(result, err)
}

func runLoyaltyExpiryScan(ctx context.Context, a *app.App) {
	result, err := a.RunLoyaltyExpiryScanNow(ctx)
	printResult(result, err)
}

func printResult(result app.HookResult, err error) {
	if err != nil {
		exitErr(err)
	}
	body, _ := json.Marshal(result)
	fmt.Println(string(body))
}

func exitErr(err error) {
	fmt.Println("error:", err)
	os.Exit(1)
}
