package scanner

import (
	"fmt"

	"macsweep/internal/namecache"
	"macsweep/internal/safety"
	"macsweep/internal/types"
)

// Deps carries the shared collaborators targets need: the validator
// that classifies every scanned item and the name resolver used for
// bundle-ID display names.
type Deps struct {
	Validator *safety.Validator
	Names     *namecache.Resolver
}

var builtinFactories = map[string]func(types.Category, Deps) Target{
	"docker":        func(cat types.Category, _ Deps) Target { return NewDockerTarget(cat) },
	"homebrew":      func(cat types.Category, deps Deps) Target { return NewBrewTarget(cat, deps.Validator) },
	"old-downloads": func(cat types.Category, deps Deps) Target { return NewOldDownloadsTarget(cat, deps, defaultDaysOld) },
	"xcode":         func(cat types.Category, deps Deps) Target { return NewXcodeTarget(cat, deps.Validator) },
	"project-cache": func(cat types.Category, deps Deps) Target { return NewProjectCacheTarget(cat, deps.Validator) },
}

func IsBuiltinID(id string) bool {
	_, ok := builtinFactories[id]
	return ok
}

// DefaultRegistry builds targets for every category in cfg.
func DefaultRegistry(cfg *types.Config, deps Deps) (*Registry, error) {
	r := NewRegistry()

	for _, cat := range cfg.Categories {
		var t Target
		switch {
		case cat.ID == "system-cache":
			t = NewSystemCacheTarget(cat, cfg.Categories, deps)
		case cat.Method == types.MethodBuiltin:
			factory, ok := builtinFactories[cat.ID]
			if !ok {
				return nil, fmt.Errorf("unknown builtin target id: %s", cat.ID)
			}
			t = factory(cat, deps)
		default:
			t = NewPathTarget(cat, deps)
		}
		r.Register(t)
	}

	return r, nil
}
