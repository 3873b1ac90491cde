// Read cryptocurrency market data into the catalog snapshot and the price
// history archive
package main

import (
	"fmt"
	"os"

	"github.com/dense-analysis/coinvault/internal/coinapi"
	"github.com/dense-analysis/coinvault/internal/database"
	"github.com/dense-analysis/coinvault/internal/env"
	"github.com/dense-analysis/coinvault/internal/history"
	"github.com/dense-analysis/coinvault/internal/model"
	"github.com/dense-analysis/coinvault/internal/storage"
)

func openRepository() storage.Repository {
	if env.Get("WALLET_STORAGE", "file") == "postgres" {
		repository, err := storage.ConnectPostgres()

		if err != nil {
			fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
			os.Exit(1)
		}

		return repository
	}

	repository, err := storage.NewFileRepository(env.Get("WALLET_DATA_DIR", "data"))

	if err != nil {
		fmt.Fprintf(os.Stderr, "Data directory error: %s\n", err)
		os.Exit(1)
	}

	return repository
}

func main() {
	env.LoadEnvironmentVariables()

	quotes, fetchedAt, err := coinapi.NewClient().Fetch()

	if err != nil {
		fmt.Fprintf(os.Stderr, "HTTP error: %s\n", err)
		os.Exit(1)
	}

	repository := openRepository()
	snapshot := &model.Catalog{Quotes: quotes, FetchedAt: fetchedAt}

	if err := repository.SaveCatalog(snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "Catalog save error: %s\n", err)
		os.Exit(1)
	}

	conn, err := database.Connect()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = conn.Close()
	}()

	if err := history.CreateTable(conn); err != nil {
		fmt.Fprintf(os.Stderr, "SQL error: %s\n", err)
		os.Exit(1)
	}

	lastSnapshotTime, err := history.LatestSnapshotTime(conn)

	if err != nil {
		fmt.Fprintf(os.Stderr, "SQL error: %s\n", err)
		os.Exit(1)
	}

	if err := history.Record(conn, quotes, fetchedAt); err != nil {
		fmt.Fprintf(os.Stderr, "SQL error: %s\n", err)
		os.Exit(1)
	}

	if lastSnapshotTime.IsZero() {
		fmt.Printf("Archived %d quotes\n", len(quotes))
	} else {
		fmt.Printf(
			"Archived %d quotes, %s after the previous snapshot\n",
			len(quotes),
			fetchedAt.Sub(lastSnapshotTime),
		)
	}
}
