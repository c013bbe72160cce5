package config

import (
	"fmt"

	"macsweep/internal/logger"
	"macsweep/internal/safety"
	"macsweep/internal/types"
)

// Merge folds the user config into the base config: overrides first,
// then custom targets. Invalid custom targets are skipped with a
// warning rather than failing the whole startup.
func Merge(cfg *types.Config, user *UserConfig) *types.Config {
	if user == nil {
		return cfg
	}

	cfg.Categories = applyOverrides(cfg.Categories, user.TargetOverrides)

	for _, ct := range user.CustomTargets {
		cat, err := convertCustomTarget(ct)
		if err != nil {
			logger.Warn("skipping custom target", "id", ct.ID, "error", err)
			continue
		}

		// ID conflicts resolve in the user's favor.
		found := false
		for i, existing := range cfg.Categories {
			if existing.ID == cat.ID {
				cfg.Categories[i] = cat
				found = true
				break
			}
		}
		if !found {
			cfg.Categories = append(cfg.Categories, cat)
		}
	}

	return cfg
}

// applyOverrides applies user overrides to categories by ID.
func applyOverrides(categories []types.Category, overrides map[string]CategoryOverride) []types.Category {
	if len(overrides) == 0 {
		return categories
	}

	result := make([]types.Category, 0, len(categories))
	for _, cat := range categories {
		override, hasOverride := overrides[cat.ID]
		if !hasOverride {
			result = append(result, cat)
			continue
		}

		if override.Disabled != nil && *override.Disabled {
			continue
		}

		if len(override.Paths) > 0 {
			cat.Paths = append(cat.Paths, override.Paths...)
		}

		if override.Note != nil {
			cat.Note = *override.Note
		}

		result = append(result, cat)
	}

	return result
}

// convertCustomTarget validates a custom target and converts it to a
// category.
func convertCustomTarget(ct CustomTarget) (types.Category, error) {
	if ct.ID == "" {
		return types.Category{}, fmt.Errorf("id is required")
	}
	if ct.Name == "" {
		return types.Category{}, fmt.Errorf("name is required")
	}

	level := safety.LevelSafe
	if ct.Safety != "" {
		parsed, err := safety.ParseLevel(ct.Safety)
		if err != nil {
			return types.Category{}, err
		}
		level = parsed
	}

	var method types.CleanupMethod
	switch ct.Method {
	case "trash", "":
		method = types.MethodTrash
	case "permanent":
		method = types.MethodPermanent
	case "command":
		method = types.MethodCommand
	case "manual":
		method = types.MethodManual
	case "builtin":
		return types.Category{}, fmt.Errorf("method 'builtin' is reserved for bundled targets")
	default:
		return types.Category{}, fmt.Errorf("invalid method %q (use: trash, permanent, command, manual)", ct.Method)
	}

	group := ct.Group
	if group == "" {
		group = "app"
	}

	return types.Category{
		ID:       ct.ID,
		Name:     ct.Name,
		Group:    group,
		Safety:   level,
		Method:   method,
		Note:     ct.Note,
		Paths:    ct.Paths,
		Command:  ct.Command,
		CheckCmd: ct.CheckCmd,
	}, nil
}
