package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/agentlisp"
	"github.com/aretw0/agentlisp/pkg/adapters/file"
	"github.com/aretw0/agentlisp/pkg/adapters/memory"
	redisadapter "github.com/aretw0/agentlisp/pkg/adapters/redis"
	"github.com/aretw0/agentlisp/pkg/ports"
	"github.com/aretw0/agentlisp/pkg/session"
	backend "github.com/redis/go-redis/v9"
)

// createEngine initializes an AgentLisp engine with standard CLI conventions.
func createEngine(opts RunOptions, logger *slog.Logger) (*agentlisp.Engine, error) {
	engineOpts := []agentlisp.Option{
		agentlisp.WithLogger(logger),
	}

	if opts.Debug {
		engineOpts = append(engineOpts, agentlisp.WithHooks(createDebugHooks(logger)))
	}

	engine, err := agentlisp.New(opts.ProgramPath, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error loading program: %w", err)
	}

	return engine, nil
}

// BuildStore selects the session backend from config. The returned cleanup
// function releases backend connections and is safe to call unconditionally.
func BuildStore(cfg Config) (ports.StateStore, ports.DistributedLocker, func(), error) {
	noop := func() {}

	switch cfg.Store {
	case "memory":
		return memory.NewStore(), nil, noop, nil

	case "redis":
		ttl, err := cfg.RedisTTL()
		if err != nil {
			return nil, nil, noop, err
		}

		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		var storeOpts []redisadapter.Option
		if ttl > 0 {
			storeOpts = append(storeOpts, redisadapter.WithTTL(ttl))
		}

		store := redisadapter.NewFromClient(client, storeOpts...)
		locker := redisadapter.NewLocker(client, "agentlisp:")
		return store, locker, func() { _ = client.Close() }, nil

	case "file", "":
		return file.New(cfg.SessionDir), nil, noop, nil

	default:
		return nil, nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// BuildManager wires the store, locker and engine hydrator into a session
// manager for the server and session commands. Extra options (like a
// session gauge) are appended last.
func BuildManager(cfg Config, engine *agentlisp.Engine, logger *slog.Logger, extra ...session.Option) (*session.Manager, func(), error) {
	store, locker, cleanup, err := BuildStore(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	opts := []session.Option{
		session.WithLogger(logger),
	}
	if engine != nil {
		opts = append(opts, session.WithHydrator(engine.Hydrate))
	}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	opts = append(opts, extra...)

	return session.NewManager(store, opts...), cleanup, nil
}
