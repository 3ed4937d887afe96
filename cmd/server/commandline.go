package main

import (
	"github.com/jessevdk/go-flags"
)

type CommandLineOptions struct {
	ConfigPath string `short:"c" long:"config" description:"configuration file"`
	Verbose    bool   `short:"v" long:"verbose" description:"log at debug level"`
}

func readCommandLineOptions() (CommandLineOptions, error) {
	opts := CommandLineOptions{}
	_, err := flags.Parse(&opts)
	return opts, err
}
