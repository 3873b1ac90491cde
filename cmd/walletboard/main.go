// Serve the read-only web dashboard for wallet accounts
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/dense-analysis/coinvault/internal/database"
	"github.com/dense-analysis/coinvault/internal/env"
	"github.com/dense-analysis/coinvault/internal/route/auth"
	"github.com/dense-analysis/coinvault/internal/route/board"
	"github.com/dense-analysis/coinvault/internal/session"
	"github.com/dense-analysis/coinvault/internal/storage"
	"github.com/dense-analysis/coinvault/internal/template"
)

func handleIndex(repository *storage.PostgresRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		user, err := session.LoadUserFromSession(repository, request)

		if err != nil {
			writer.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(writer, "database connection error\n")

			return
		}

		if user != nil {
			http.Redirect(writer, request, "/portfolio", http.StatusFound)
		} else {
			http.Redirect(writer, request, "/login", http.StatusFound)
		}
	}
}

func main() {
	env.LoadEnvironmentVariables()
	session.InitSessionStorage()
	template.Init()

	repository, err := storage.ConnectPostgres()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer repository.Close()

	conn, err := database.Connect()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = conn.Close()
	}()

	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/", handleIndex(repository)).Methods("GET")
	router.HandleFunc("/login", auth.HandleViewLoginForm).Methods("GET")
	router.HandleFunc("/login", auth.HandleLogin(repository)).Methods("POST")
	router.HandleFunc("/logout", auth.HandleLogout).Methods("POST")
	router.HandleFunc("/portfolio", board.HandlePortfolio(repository)).Methods("GET")
	router.HandleFunc("/offerings", board.HandleOfferings(repository)).Methods("GET")
	router.HandleFunc("/history/{asset}", board.HandleHistory(repository, conn)).Methods("GET")

	server := http.Server{
		Addr:    ":" + env.Get("BOARD_PORT", "8000"),
		Handler: router,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %s \n", err)
		}
	}()

	log.Println("Server started")
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shut down failed: %+v", err)
	}

	log.Println("Server shut down successfully")
}
