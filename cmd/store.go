package main

import (
	"github.com/rotisserie/eris"

	"github.com/belegwerk/belegscan/internal/store"
)

func initStore() (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "belegscan.db"
		}
		return store.NewSQLite(dsn)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
