package main

import (
	"net/http"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"census/internal/census"
	"census/internal/config"
	"census/internal/fetcher"
	"census/internal/handlers"
	"census/internal/storage"
)

func main() {
	opts, err := readCommandLineOptions()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.WithError(err).Fatal("could not parse command line arguments")
	}

	conf, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.WithError(err).Fatal("could not load configuration")
	}

	level, _ := log.ParseLevel(conf.LogLevel)
	if opts.Verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	// Ensure data directory exists
	if err := os.MkdirAll(conf.DataDir, 0755); err != nil {
		log.WithError(err).Fatal("Failed to create data directory")
	}

	store, err := storage.NewPocketBaseStore(conf.DataDir, conf.PocketBaseAddress)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}
	defer store.Close()

	client := fetcher.New(
		fetcher.WithBaseURL(conf.CensusBaseURL),
		fetcher.WithRUCAURL(conf.RUCAURL),
	)
	censusHandler := handlers.NewCensusHandler(census.NewPipeline(client), store, conf.RequestTimeout)

	mux := censusHandler.Routes()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	log.WithField("address", conf.ListenAddress).Info("Server starting")
	if err := http.ListenAndServe(conf.ListenAddress, mux); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
