package config

import (
	"github.com/theirongolddev/unitecon/internal/reference"
)

// Profile is the company context the dashboard is rendered for.
type Profile struct {
	Stage         reference.Stage
	BusinessModel reference.BusinessModel
}

// ResolveProfile combines the config with a command-line stage override.
// An empty override keeps the configured stage; an empty configured stage
// means pre-seed.
func ResolveProfile(cfg Config, stageOverride string) (Profile, error) {
	raw := cfg.General.Stage
	if stageOverride != "" {
		raw = stageOverride
	}

	p := Profile{Stage: reference.StagePreSeed}
	if raw != "" {
		st, err := reference.ParseStage(raw)
		if err != nil {
			return Profile{}, err
		}
		p.Stage = st
	}

	bm, err := reference.ParseBusinessModel(cfg.General.BusinessModel)
	if err != nil {
		return Profile{}, err
	}
	p.BusinessModel = bm
	return p, nil
}
