// Package regions loads the canonical region registry: every state's
// canonical name, metadata and district list, plus the nation-level and
// miscellaneous bucket metadata. The registry is read once at startup
// and treated as immutable for the run.
package regions

import (
	"fmt"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/covid-saarani/lipik/internal/domain/model"
)

// Meta is the static configuration of one region.
type Meta struct {
	Code     string `koanf:"abbr"`
	Hindi    string `koanf:"hindi"`
	Helpline string `koanf:"helpline"`
	Donate   string `koanf:"donate"`
}

// State is one state's registry entry.
type State struct {
	Meta      `koanf:",squash"`
	Districts []string `koanf:"districts"`
}

// Registry is the full region configuration.
type Registry struct {
	Nation Meta             `koanf:"nation"`
	Misc   Meta             `koanf:"misc"`
	States map[string]State `koanf:"states"`
}

// Load reads and validates the registry from a YAML file.
func Load(path string) (*Registry, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadRegistry, path, err)
	}

	var reg Registry
	if err := k.UnmarshalWithConf("", &reg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadRegistry, path, err)
	}
	if len(reg.States) == 0 {
		return nil, fmt.Errorf("%w: %s: no states configured", ErrEmptyRegistry, path)
	}
	return &reg, nil
}

// StateNames returns every canonical state name, sorted. This is the
// resolver's candidate list.
func (r *Registry) StateNames() []string {
	names := make([]string, 0, len(r.States))
	for name := range r.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSnapshot builds an empty snapshot carrying the registry's
// metadata: one region per state with its district list pre-seeded,
// plus the nation and miscellaneous buckets.
func (r *Registry) NewSnapshot() *model.Snapshot {
	snap := model.NewSnapshot(
		model.RegionMeta{Name: model.NationKey, Code: r.Nation.Code, Hindi: r.Nation.Hindi, Helpline: r.Nation.Helpline, Donate: r.Nation.Donate},
		model.RegionMeta{Name: model.MiscKey, Code: r.Misc.Code, Hindi: r.Misc.Hindi, Helpline: r.Misc.Helpline, Donate: r.Misc.Donate},
	)
	for name, state := range r.States {
		region := model.NewRegion(model.RegionMeta{
			Name:     name,
			Code:     state.Code,
			Hindi:    state.Hindi,
			Helpline: state.Helpline,
			Donate:   state.Donate,
		})
		for _, district := range state.Districts {
			region.Districts[district] = &model.DistrictStats{}
		}
		snap.Regions[name] = region
	}
	return snap
}
