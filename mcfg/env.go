package mcfg

import (
	"os"
	"strings"

	"github.com/mediocregopher/tiniredis/mcmp"
)

// SourceEnv is a Source which parses Params out of the process environment.
// Each Param's environment variable name is derived the same way as
// SourceCLI's flag name, but upper-cased with underscores in place of
// dashes, e.g. "SERVER_LISTENER_PORT".
type SourceEnv struct {
	// Env defaults to os.Environ() if nil.
	Env []string
}

// Parse implements the Source interface.
func (e SourceEnv) Parse(cmp *mcmp.Component) ([]ParamValue, error) {
	env := e.Env
	if env == nil {
		env = os.Environ()
	}

	envM := make(map[string]string, len(env))
	for _, kv := range env {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			envM[kv[:i]] = kv[i+1:]
		}
	}

	params := CollectParams(cmp)
	var out []ParamValue
	for _, p := range params {
		envName := envName(p.Component.Path(), p.Name)
		raw, ok := envM[envName]
		if !ok {
			continue
		}

		val, err := fuzzyParse(p, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ParamValue{Name: p.Name, Path: p.Component.Path(), Value: val})
	}

	return out, nil
}

func envName(path []string, name string) string {
	full := paramFullName(path, name)
	full = strings.ReplaceAll(full, "-", "_")
	return strings.ToUpper(full)
}
