package main

import (
	"github.com/fluxforge/fluxforge/config"
	"github.com/fluxforge/fluxforge/logging"
	"github.com/fluxforge/fluxforge/typemap"
)

func newLogger(verbose bool) *logging.Logger {
	level := "info"
	if verbose {
		level = "debug"
	}
	log, err := logging.New(level, "console")
	if err != nil {
		return logging.Nop()
	}
	return log
}

// loadPolicy reads the type-mapping policy from configPath, falling back
// to the bundled MySQL->PostgreSQL default when no path was given (spec
// §4.3: "A built-in default mapping ... is bundled and used when no user
// mapping is supplied").
func loadPolicy(configPath string, allowLossy bool) (typemap.Policy, error) {
	if configPath == "" {
		p := typemap.DefaultMySQLToPostgres()
		p.AllowLossy = allowLossy
		return p, nil
	}
	p, err := config.ParseFile(configPath)
	if err != nil {
		return typemap.Policy{}, err
	}
	p.AllowLossy = allowLossy
	return p, nil
}
