package cli

import (
	"fmt"

	"macsweep/internal/cleaner"
	"macsweep/internal/config"
	"macsweep/internal/logger"
	"macsweep/internal/namecache"
	"macsweep/internal/oplog"
	"macsweep/internal/safety"
	"macsweep/internal/scanner"
	"macsweep/internal/types"
)

// App bundles the wired-up collaborators every command needs.
type App struct {
	Config    *types.Config
	User      *config.UserConfig
	Validator *safety.Validator
	Names     *namecache.Resolver
	Registry  *scanner.Registry
	Service   *cleaner.CleanService
	Journal   *oplog.Journal
}

// newApp loads configuration, compiles user rules and wires the
// registry, journal and clean service together.
func newApp() (*App, error) {
	var (
		cfg *types.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadEmbedded()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	user, err := config.LoadUser()
	if err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}
	for _, ct := range user.CustomTargets {
		if scanner.IsBuiltinID(ct.ID) {
			logger.Warn("custom target shadows a builtin scanner", "id", ct.ID)
		}
	}
	cfg = config.Merge(cfg, user)

	rules, err := config.CompileRules(user.CustomRules)
	if err != nil {
		return nil, err
	}

	validator := safety.NewValidator(safety.WithRules(rules...))
	names := namecache.NewResolver()

	registry, err := scanner.DefaultRegistry(cfg, scanner.Deps{
		Validator: validator,
		Names:     names,
	})
	if err != nil {
		names.Close()
		return nil, err
	}

	journal, err := oplog.Open(oplog.DefaultPath())
	if err != nil {
		// A broken journal should not block cleaning; records are dropped.
		logger.Warn("deletion journal unavailable", "error", err)
		journal = nil
	}

	return &App{
		Config:    cfg,
		User:      user,
		Validator: validator,
		Names:     names,
		Registry:  registry,
		Service:   cleaner.NewCleanService(registry, journal),
		Journal:   journal,
	}, nil
}

// Close releases the app's background resources.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Names != nil {
		a.Names.Close()
	}
	if err := a.Journal.Close(); err != nil {
		logger.Warn("journal close failed", "error", err)
	}
}

// ExcludedSets converts the user's excluded paths into per-category
// lookup sets in the shape PrepareJobs expects.
func (a *App) ExcludedSets() map[string]map[string]bool {
	excluded := make(map[string]map[string]bool, len(a.User.ExcludedPaths))
	for catID, paths := range a.User.ExcludedPaths {
		set := make(map[string]bool, len(paths))
		for _, p := range paths {
			set[p] = true
		}
		excluded[catID] = set
	}
	return excluded
}
