package config

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"census/internal/fetcher"
	"census/internal/models"
)

// Configuration of the census server. API keys are not part of it: callers
// send their key with every request.
type Configuration struct {
	ListenAddress string `yaml:"listen_address"`
	DataDir       string `yaml:"data_dir"`
	// PocketBaseAddress starts the PocketBase admin UI when set.
	PocketBaseAddress string `yaml:"pocketbase_address"`

	CensusBaseURL string `yaml:"census_base_url"`
	RUCAURL       string `yaml:"ruca_url"`
	// RequestTimeout bounds a whole pipeline run; zero leaves it unbounded.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given
func Default() Configuration {
	return Configuration{
		ListenAddress:  ":8080",
		DataDir:        "./pb_data",
		CensusBaseURL:  fetcher.DefaultBaseURL,
		RUCAURL:        models.DefaultRUCAURL,
		RequestTimeout: 0,
		LogLevel:       "info",
	}
}

// Load reads the configuration file at path over the defaults, then applies
// the PORT and DATA_DIR environment variables.
func Load(path string) (Configuration, error) {
	conf := Default()

	if path != "" {
		log.WithField("path", path).Info("Loading configuration file")

		f, err := os.Open(path)
		if err != nil {
			return Configuration{}, fmt.Errorf("could not open configuration file: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&conf); err != nil {
			return Configuration{}, fmt.Errorf("could not parse configuration file: %w", err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		conf.ListenAddress = ":" + port
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		conf.DataDir = dataDir
	}

	if _, err := log.ParseLevel(conf.LogLevel); err != nil {
		return Configuration{}, fmt.Errorf("invalid log level: %w", err)
	}
	if conf.RequestTimeout < 0 {
		return Configuration{}, fmt.Errorf("invalid request timeout: %s", conf.RequestTimeout)
	}
	return conf, nil
}
