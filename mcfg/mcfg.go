package mcfg

import (
	"encoding/json"
	"fmt"

	"github.com/mediocregopher/tiniredis/mcmp"
	"github.com/mediocregopher/tiniredis/merr"
)

// CollectParams walks cmp and all of its descendants, via
// mcmp.BreadthFirstVisit, and returns every Param which has been registered
// on any of them.
func CollectParams(cmp *mcmp.Component) []Param {
	var out []Param
	mcmp.BreadthFirstVisit(cmp, func(c *mcmp.Component) bool {
		out = append(out, getLocalParams(c)...)
		return true
	})
	return out
}

// ParamValue is a single configuration value, as parsed by a Source, destined
// for the Param with a matching Name and Path.
type ParamValue struct {
	Name  string
	Path  []string
	Value json.RawMessage

	// AlreadyApplied is set by Sources (like SourceCLI, for a CLIValue
	// Param) which write directly into the Param's Into value as part of
	// parsing, rather than returning a value meant to be json.Unmarshal'd.
	// Populate still uses its presence to satisfy ParamRequired.
	AlreadyApplied bool
}

func (pv ParamValue) fullName() string {
	return paramFullName(pv.Path, pv.Name)
}

// Source is able to parse configuration values, for the Params registered on
// cmp and its descendants, out of some external data source (the
// command-line arguments, the process environment, ...).
type Source interface {
	Parse(cmp *mcmp.Component) ([]ParamValue, error)
}

// Sources is a Source composed of other Sources. Parse results are
// concatenated in order, with later Sources' ParamValues taking precedence
// over earlier ones for the same Param.
type Sources []Source

// Parse implements the Source interface.
func (ss Sources) Parse(cmp *mcmp.Component) ([]ParamValue, error) {
	var out []ParamValue
	for _, s := range ss {
		pvs, err := s.Parse(cmp)
		if err != nil {
			return nil, err
		}
		out = append(out, pvs...)
	}
	return out, nil
}

// Populate collects every Param registered on cmp and its descendants,
// parses values for them out of src, and unmarshals those values into each
// Param's Into pointer. Params which are Required and have no value
// available from src result in an error.
func Populate(cmp *mcmp.Component, src Source) error {
	params := CollectParams(cmp)
	byName := make(map[string]Param, len(params))
	for _, p := range params {
		byName[paramFullName(p.Component.Path(), p.Name)] = p
	}

	pvs, err := src.Parse(cmp)
	if err != nil {
		return merr.Wrap(err, cmp.Context())
	}

	latest := make(map[string]ParamValue, len(pvs))
	for _, pv := range pvs {
		latest[pv.fullName()] = pv
	}

	for fullName, p := range byName {
		pv, ok := latest[fullName]
		if !ok {
			if p.Required {
				return merr.New(
					fmt.Sprintf("no value given for required param %q", fullName),
					p.Component.Context(),
				)
			}
			continue
		}
		if pv.AlreadyApplied {
			continue
		}
		if err := json.Unmarshal(pv.Value, p.Into); err != nil {
			return merr.Wrap(err, mcmp.Root(cmp).Context())
		}
	}

	return nil
}
