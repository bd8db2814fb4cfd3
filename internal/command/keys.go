package command

import (
	"time"

	"github.com/mediocregopher/tiniredis/internal/resp"
)

func cmdType(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	kind, err := d.Store.Type(key)
	if err != nil {
		return errToResponse(err)
	}
	return valueResponse(resp.NewSimpleString(kind.String()))
}

func cmdTTL(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	ttl, exists, err := d.Store.TTL(key)
	if err != nil {
		return errToResponse(err)
	}
	if !exists {
		return intResponse(-2)
	}
	// Store.TTL returns an exact zero Duration only for "no expiration set"
	// (§4.2's TTL contract) — a key with a genuine, soon-to-elapse
	// expiration has a small positive Duration instead, since get() filters
	// out anything already past its deadline.
	if ttl == 0 {
		return intResponse(-1)
	}
	return intResponse(int64(ttl / time.Second))
}

func cmdDel(d *Dispatcher, cs *ConnState, a *Args) Response {
	keys := toStrings(a.PopRest())
	if len(keys) == 0 {
		return errResponse("ERR wrong number of arguments for 'del' command")
	}
	return intResponse(int64(d.Store.Del(keys...)))
}

func cmdExists(d *Dispatcher, cs *ConnState, a *Args) Response {
	keys := toStrings(a.PopRest())
	if len(keys) == 0 {
		return errResponse("ERR wrong number of arguments for 'exists' command")
	}
	var n int64
	for _, k := range keys {
		if d.Store.Exists(k) {
			n++
		}
	}
	return intResponse(n)
}

func cmdExpire(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	secs, err := a.PopInt("seconds")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	if d.Store.Expire(key, time.Duration(secs)*time.Second) {
		return intResponse(1)
	}
	return intResponse(0)
}

func cmdPExpire(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	ms, err := a.PopInt("milliseconds")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	if d.Store.Expire(key, time.Duration(ms)*time.Millisecond) {
		return intResponse(1)
	}
	return intResponse(0)
}

func cmdPersist(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	if d.Store.Persist(key) {
		return intResponse(1)
	}
	return intResponse(0)
}

func cmdRename(d *Dispatcher, cs *ConnState, a *Args) Response {
	src, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	dst, err := a.PopString("newkey")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	if !d.Store.Rename(src, dst) {
		return errResponse("ERR no such key")
	}
	return okResponse()
}

func cmdKeys(d *Dispatcher, cs *ConnState, a *Args) Response {
	pattern, err := a.PopString("pattern")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	keys, err := d.Store.Keys(pattern)
	if err != nil {
		return errToResponse(err)
	}
	return stringsArrayResponse(keys)
}

func cmdDBSize(d *Dispatcher, cs *ConnState, a *Args) Response {
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(d.Store.DBSize()))
}

func cmdFlushDB(d *Dispatcher, cs *ConnState, a *Args) Response {
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}
	d.Store.FlushDB()
	return okResponse()
}

func cmdShutdown(d *Dispatcher, cs *ConnState, a *Args) Response {
	noSave := a.PopOptionalFlag("NOSAVE")
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}
	return Response{Kind: KindShutdown, ShutdownNoSave: noSave}
}

// cmdWait is a replication stub: no replicas ever exist, so it always
// reports 0 acknowledged, mirroring real clients (e.g. redis-cli --no-raw)
// that probe with WAIT during connection setup.
func cmdWait(d *Dispatcher, cs *ConnState, a *Args) Response {
	if _, err := a.PopInt("numreplicas"); err != nil {
		return errToResponse(err)
	}
	if _, err := a.PopInt("timeout"); err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}
	return intResponse(0)
}

func toStrings(items [][]byte) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = string(it)
	}
	return out
}
