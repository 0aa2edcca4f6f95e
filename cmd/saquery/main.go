// Command saquery loads a provider list, runs one query to a fixed point,
// and prints the rendered result. It is not the interactive shell (out of
// core scope per spec.md §1): no REPL, no commands, no color.
//
// # Configuration
//
// Environment variables:
//
//	SAQUERY_PROVIDERS  - path to a provider list file, one URL per line (required)
//	SAQUERY_QUERY      - the query to run (required)
//
// # Example
//
//	SAQUERY_PROVIDERS=./providers.txt SAQUERY_QUERY='.filter_by_type("host")' saquery
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sebitommy123/sa/config"
	"github.com/sebitommy123/sa/driver"
	"github.com/sebitommy123/sa/provider"
	"github.com/sebitommy123/sa/provider/httpprovider"
	"github.com/sebitommy123/sa/render"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	providersPath := envOr("SAQUERY_PROVIDERS", "")
	if providersPath == "" {
		return fmt.Errorf("SAQUERY_PROVIDERS must name a provider list file")
	}
	query := envOr("SAQUERY_QUERY", "")
	if query == "" {
		return fmt.Errorf("SAQUERY_QUERY must name a query to run")
	}

	urls, err := config.LoadProviderList(providersPath)
	if err != nil {
		return fmt.Errorf("load provider list: %w", err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("provider list %q has no entries", providersPath)
	}

	providers := make(map[string]provider.Provider, len(urls))
	for _, url := range urls {
		providers[url] = httpprovider.New(url)
	}

	d, allData, err := driver.New(ctx, providers)
	if err != nil {
		return fmt.Errorf("connect to providers: %w", err)
	}

	result, finalState, err := d.ExecuteFully(ctx, allData, query)
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}

	text, err := render.Value(result, finalState)
	if err != nil {
		return fmt.Errorf("render result: %w", err)
	}
	fmt.Println(text)
	return nil
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
