package main

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/vancomm/minesweeper-duo/internal/config"
	"github.com/vancomm/minesweeper-duo/internal/database"
)

func main() {
	log := logrus.New()

	flags := config.Flags(os.Args[0])
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal(err)
	}
	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatal("unable to load config: ", err)
	}
	if cfg.Production() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}

	url, err := cfg.DbURL()
	if err != nil {
		log.Fatal("invalid database config: ", err)
	}
	if url == "" {
		log.Fatal("no database configured, set MINES_DATABASE_URL or MINES_POSTGRES_*")
	}

	schema, err := database.Migrate(url)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(logrus.Fields{
		"version": schema.Version,
		"dirty":   schema.Dirty,
	}).Info("migration successful")
}
