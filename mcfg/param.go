// Package mcfg implements declarative configuration parameters which are
// registered onto a Component and later populated from one or more Sources
// (the command-line, the process environment, ...).
package mcfg

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mediocregopher/tiniredis/mcmp"
)

// Param is a configuration parameter which can be populated by Populate.
// Every Param is registered onto a Component; its effective CLI/env name is
// derived by joining that Component's Path with its Name.
type Param struct {
	Name     string
	Usage    string
	IsBool   bool
	Required bool

	// Into is the pointer which will be json.Unmarshal'd into. The value it
	// points to when the Param is created also determines its default.
	Into interface{}

	Component *mcmp.Component
}

// ParamOpt is an option which can be passed in to any of the Param
// constructors (String, Int, Bool, ...) to adjust the resulting Param.
type ParamOpt func(*paramOpts)

type paramOpts struct {
	usage    string
	required bool
}

// ParamUsage sets the help text shown for a Param.
func ParamUsage(usage string) ParamOpt {
	return func(o *paramOpts) { o.usage = usage }
}

// ParamRequired marks the Param as required: Populate will error if no
// Source provides a value for it.
func ParamRequired() ParamOpt {
	return func(o *paramOpts) { o.required = true }
}

func applyOpts(opts []ParamOpt) paramOpts {
	var o paramOpts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type paramKey string

func mustAdd(cmp *mcmp.Component, p Param) {
	p.Component = cmp
	key := paramKey(p.Name)
	if cmp.HasValue(key) {
		panic(fmt.Sprintf("Component %v already has a param named %q", cmp.Path(), p.Name))
	}
	cmp.SetValue(key, p)
}

func getLocalParams(cmp *mcmp.Component) []Param {
	var out []Param
	for k, v := range values(cmp) {
		if _, ok := k.(paramKey); !ok {
			continue
		}
		out = append(out, v.(Param))
	}
	return out
}

// values exposes the Params registered directly on a Component. Component
// doesn't expose a generic map iterator, so each Param's name is additionally
// recorded into a side index (paramIndexKey) at registration time, and that
// index is walked here to recover them.
func values(cmp *mcmp.Component) map[interface{}]interface{} {
	out := map[interface{}]interface{}{}
	idx, _ := cmp.Value(paramIndexKey{}).([]string)
	for _, name := range idx {
		if v := cmp.Value(paramKey(name)); v != nil {
			out[paramKey(name)] = v
		}
	}
	return out
}

type paramIndexKey struct{}

func paramFullName(path []string, name string) string {
	return strings.Join(append(append([]string{}, path...), name), "-")
}

func add(cmp *mcmp.Component, name, usage string, isBool, required bool, into interface{}) {
	cmp.UpdateValue(paramIndexKey{}, func(v interface{}) interface{} {
		idx, _ := v.([]string)
		return append(idx, name)
	})
	mustAdd(cmp, Param{
		Name:     name,
		Usage:    usage,
		IsBool:   isBool,
		Required: required,
		Into:     into,
	})
}

// String declares a string Param and returns a pointer which will hold its
// value once Populate is run.
func String(cmp *mcmp.Component, name string, defaultVal string, opts ...ParamOpt) *string {
	o := applyOpts(opts)
	s := defaultVal
	add(cmp, name, o.usage, false, o.required, &s)
	return &s
}

// Int declares an int Param.
func Int(cmp *mcmp.Component, name string, defaultVal int, opts ...ParamOpt) *int {
	o := applyOpts(opts)
	i := defaultVal
	add(cmp, name, o.usage, false, o.required, &i)
	return &i
}

// Int64 declares an int64 Param.
func Int64(cmp *mcmp.Component, name string, defaultVal int64, opts ...ParamOpt) *int64 {
	o := applyOpts(opts)
	i := defaultVal
	add(cmp, name, o.usage, false, o.required, &i)
	return &i
}

// Bool declares a boolean flag Param, defaulting to false.
func Bool(cmp *mcmp.Component, name string, opts ...ParamOpt) *bool {
	o := applyOpts(opts)
	var b bool
	add(cmp, name, o.usage, true, o.required, &b)
	return &b
}

// JSON declares a Param whose value is unmarshaled as arbitrary JSON into
// into, which must be a pointer.
func JSON(cmp *mcmp.Component, name string, into interface{}, opts ...ParamOpt) {
	o := applyOpts(opts)
	add(cmp, name, o.usage, false, o.required, into)
}

func fuzzyParse(p Param, raw string) (json.RawMessage, error) {
	if p.IsBool {
		switch raw {
		case "", "0", "false":
			return json.RawMessage("false"), nil
		default:
			return json.RawMessage("true"), nil
		}
	}

	if len(raw) > 0 && (raw[0] == '"' || raw[0] == '{' || raw[0] == '[') {
		return json.RawMessage(raw), nil
	}

	// everything else (ints, durations, bare strings) gets quoted as a
	// string unless it parses as a JSON number already; "true", "false" and
	// "null" are quoted too.
	var scratch interface{}
	if err := json.Unmarshal([]byte(raw), &scratch); err == nil {
		if _, isNum := scratch.(float64); isNum {
			return json.RawMessage(raw), nil
		}
	}
	b, err := json.Marshal(raw)
	return b, err
}
