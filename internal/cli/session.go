package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gzhole/hookguard/internal/config"
	"github.com/gzhole/hookguard/internal/logger"
	"github.com/gzhole/hookguard/internal/policy"
)

// session is the per-process state shared by every subcommand: the resolved
// configuration and the diagnostic logger.
type session struct {
	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
}

// openSession never fails. Configuration and logger problems are reported as
// warnings and the defaults are used, so a guard can always answer.
func openSession(cmd *cobra.Command) *session {
	cfg, cfgErr := config.Load(config.Overrides{RulesFile: rulesPath, LogLevel: logLevel})

	log, closer, err := logger.Open(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File}, cmd.ErrOrStderr())
	if err != nil {
		log, _ = logger.New(cmd.ErrOrStderr(), logger.DefaultLevel)
		closer = nil
		log.Warn("logger setup failed, logging to stderr", "error", err)
	}
	if cfgErr != nil {
		log.Warn("config load failed, using defaults", "error", cfgErr)
	}

	return &session{cfg: cfg, log: log, closer: closer}
}

func (s *session) Close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// tables loads the built-in rules, the configured rule file and the enabled
// packs, in that order.
func (s *session) tables() (*policy.Tables, error) {
	t, err := policy.Load(s.cfg.Rules.File)
	if err != nil {
		return nil, err
	}

	t, infos, err := policy.LoadPacks(s.cfg.Rules.PacksDir, t)
	if err != nil {
		return nil, fmt.Errorf("load packs: %w", err)
	}
	for _, info := range infos {
		if info.Err != nil {
			s.log.Warn("skipping rule pack", "pack", info.Name, "error", info.Err)
		}
	}
	return t, nil
}
