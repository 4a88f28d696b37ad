// fredcurve fetches the latest U.S. Treasury yield curve from FRED and
// emits quotes JSON consumable by curvefit:
//
//	fredcurve | curvefit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/meenmo/yieldcurve/marketdata/fred"
)

type output struct {
	Percent bool         `json:"percent"`
	Quotes  []fred.Quote `json:"quotes"`
}

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "Overall fetch timeout")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := fred.NewClient()
	quotes, err := client.Quotes(ctx)
	if err != nil {
		log.Fatalw("fetch FRED curve", "error", err)
	}
	log.Infow("fetched FRED curve", "points", len(quotes))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{Percent: true, Quotes: quotes}); err != nil {
		log.Fatalw("encode output", "error", err)
	}
}
