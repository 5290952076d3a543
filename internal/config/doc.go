// Package config loads advisord's configuration from the environment.
//
// Every knob is an ADVISOR_-prefixed environment variable with a sane
// default, so a bare `advisord serve` runs a development instance. In
// dev mode a .env file in the working directory is read first, which
// keeps local overrides out of the shell profile.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := slog.New(cfg.LogHandler(os.Stderr))
package config
