package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/onerepo/repogen/internal/app"
)

func main() {
	_ = godotenv.Load()

	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	flag.Parse()

	if err := app.New(*cfgFileName).Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "repogen: %s\n", err)
		os.Exit(1)
	}
}
