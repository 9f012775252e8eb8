package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// initLog sends human-readable logs to stderr; stdout carries JSON output
// and MCP traffic.
func initLog(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// debugFromEnv reports whether ROLO_DEBUG asks for debug logging.
func debugFromEnv() bool {
	switch os.Getenv("ROLO_DEBUG") {
	case "1", "true":
		return true
	}
	return false
}
