package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"booking-api/cmd/bookingapi"
)

func main() {
	fs := flag.NewFlagSet("booking-api", flag.ContinueOnError)
	port := fs.Int("port", 0, "HTTP port for the API (overrides config)")
	maxConc := fs.Int("max-concurrent", 0, "Maximum number of concurrent requests (overrides config)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	if *port < 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "Error: --port must be between 1 and 65535")
		fs.Usage()
		os.Exit(2)
	}
	if *maxConc < 0 {
		fmt.Fprintln(os.Stderr, "Error: --max-concurrent must be > 0")
		fs.Usage()
		os.Exit(2)
	}

	// cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := bookingapi.Run(ctx, *port, *maxConc); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
