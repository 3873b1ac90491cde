// Serve the cryptocurrency wallet over TCP
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dense-analysis/coinvault/internal/catalog"
	"github.com/dense-analysis/coinvault/internal/coinapi"
	"github.com/dense-analysis/coinvault/internal/command"
	"github.com/dense-analysis/coinvault/internal/env"
	"github.com/dense-analysis/coinvault/internal/server"
	"github.com/dense-analysis/coinvault/internal/storage"
	"github.com/dense-analysis/coinvault/internal/wallet"
)

func openRepository() (storage.Repository, func()) {
	if env.Get("WALLET_STORAGE", "file") == "postgres" {
		repository, err := storage.ConnectPostgres()

		if err != nil {
			fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
			os.Exit(1)
		}

		return repository, func() {
			repository.Close()
		}
	}

	repository, err := storage.NewFileRepository(env.Get("WALLET_DATA_DIR", "data"))

	if err != nil {
		fmt.Fprintf(os.Stderr, "Data directory error: %s\n", err)
		os.Exit(1)
	}

	return repository, func() {}
}

func main() {
	env.LoadEnvironmentVariables()

	repository, closeRepository := openRepository()
	defer closeRepository()

	priceCatalog := catalog.New(coinapi.NewClient(), repository)
	userWallet, err := wallet.New(repository, priceCatalog)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Wallet error: %s\n", err)
		os.Exit(1)
	}

	walletServer := server.New(command.NewExecutor(userWallet), userWallet)
	address := env.Get("WALLET_HOST", "localhost") + ":" + env.Get("WALLET_PORT", "7777")

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := walletServer.ListenAndServe(address); err != nil {
			log.Fatalf("server error: %s \n", err)
		}
	}()

	log.Println("Server started on " + address)
	<-done

	walletServer.Stop()
	walletServer.Wait()
	log.Println("Server shut down successfully")
}
