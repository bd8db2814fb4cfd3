package command

import (
	"strings"

	"github.com/mediocregopher/tiniredis/internal/resp"
)

func cmdAuth(d *Dispatcher, cs *ConnState, a *Args) Response {
	password, err := a.PopString("password")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}
	return Response{Kind: KindAuth, AuthPassword: password}
}

// cmdConfig implements CONFIG GET <parameter>, the only CONFIG subcommand
// this server recognizes — just enough for clients that probe dir/
// dbfilename before issuing SAVE/SHUTDOWN.
func cmdConfig(d *Dispatcher, cs *ConnState, a *Args) Response {
	sub, err := a.PopString("subcommand")
	if err != nil {
		return errToResponse(err)
	}
	if !strings.EqualFold(sub, "GET") {
		return errResponsef("ERR Unknown CONFIG subcommand or wrong number of arguments for '%s'", sub)
	}
	param, err := a.PopString("parameter")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	var value string
	switch strings.ToLower(param) {
	case "dir":
		value = d.Dir
	case "dbfilename":
		value = d.DBFilename
	default:
		return arrayResponse()
	}
	return stringsArrayResponse([]string{param, value})
}

func cmdQuit(d *Dispatcher, cs *ConnState, a *Args) Response {
	return okResponse()
}

func cmdReset(d *Dispatcher, cs *ConnState, a *Args) Response {
	return valueResponse(resp.NewSimpleString("RESET"))
}
