package cli

import (
	"context"
	"fmt"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	ProgramPath   string
	JSON          bool
	Headless      bool
	Debug         bool
	Plain         bool
	SessionID     string
	Fresh         bool
	KeepCompleted bool
	ConfigPath    string

	// Store overrides the config file's store backend when set.
	Store string
}

// Execute handles the 'run' command logic.
func Execute(opts RunOptions) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Store != "" {
		cfg.Store = opts.Store
	}

	if opts.Fresh && opts.SessionID != "" {
		if err := ResetSession(cfg, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	return RunSession(opts, cfg)
}

// ResetSession clears the session data for the given ID.
func ResetSession(cfg Config, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	store, _, cleanup, err := BuildStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	_ = store.Delete(context.Background(), sessionID)
	return nil
}
