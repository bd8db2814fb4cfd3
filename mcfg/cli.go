package mcfg

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/mediocregopher/tiniredis/mcmp"
	"github.com/mediocregopher/tiniredis/merr"
)

// CLIValue can be implemented by a Param's Into value to take full control
// over how its command-line flag is parsed, rather than being treated as a
// plain string. This is needed for flags which don't fit a single scalar
// value, e.g. a "--save <seconds> <changes>" style flag.
type CLIValue interface {
	pflag.Value
}

// SourceCLI is a Source which parses Params out of command-line arguments,
// in the POSIX/GNU style (long flags, "-h" help, "--" to end flag parsing)
// supplied by pflag.
//
// Each Param's flag name is derived by joining its Component's Path and its
// Name with dashes, e.g. a Param named "port" on the Component at path
// ["server", "listener"] becomes the flag "--server-listener-port".
type SourceCLI struct {
	// Args defaults to os.Args[1:] if nil.
	Args []string
}

// Parse implements the Source interface.
func (cli SourceCLI) Parse(cmp *mcmp.Component) ([]ParamValue, error) {
	params := CollectParams(cmp)

	fs := pflag.NewFlagSet(rootName(cmp), pflag.ContinueOnError)
	fs.Usage = func() {}

	type flagInfo struct {
		p        Param
		fullName string
		custom   bool
	}
	infos := make([]flagInfo, len(params))

	for i, p := range params {
		fullName := paramFullName(p.Component.Path(), p.Name)
		infos[i] = flagInfo{p: p, fullName: fullName}

		if cv, ok := p.Into.(CLIValue); ok {
			fs.Var(cv, fullName, p.Usage)
			infos[i].custom = true
			continue
		}

		if p.IsBool {
			fs.Bool(fullName, false, p.Usage)
		} else {
			fs.String(fullName, "", p.Usage)
		}
	}

	args := cli.Args
	if args == nil {
		args = os.Args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return nil, merr.Wrap(err, cmp.Context())
	}

	var out []ParamValue
	for _, info := range infos {
		if !fs.Changed(info.fullName) {
			continue
		}

		if info.custom {
			// fs.Var already called Set on info.p.Into directly during
			// fs.Parse; nothing left to unmarshal.
			out = append(out, ParamValue{
				Name:           info.p.Name,
				Path:           info.p.Component.Path(),
				AlreadyApplied: true,
			})
			continue
		}

		raw := fs.Lookup(info.fullName).Value.String()
		val, err := fuzzyParse(info.p, raw)
		if err != nil {
			return nil, merr.Wrap(err, cmp.Context())
		}
		out = append(out, ParamValue{Name: info.p.Name, Path: info.p.Component.Path(), Value: val})
	}

	return out, nil
}

func rootName(cmp *mcmp.Component) string {
	root := mcmp.Root(cmp)
	if name, ok := root.Name(); ok {
		return name
	}
	return "app"
}
