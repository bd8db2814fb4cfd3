package command

import (
	"strconv"
	"time"

	"github.com/mediocregopher/tiniredis/internal/resp"
	"github.com/mediocregopher/tiniredis/internal/store"
	"github.com/mediocregopher/tiniredis/internal/waiter"
)

func cmdPing(d *Dispatcher, cs *ConnState, a *Args) Response {
	msg, hasMsg := a.PopOptional()
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}
	if cs.InSubscribeMode {
		return valueResponse(waiter.PongFrame())
	}
	if hasMsg {
		return bulkResponse(msg)
	}
	return valueResponse(resp.NewSimpleString("PONG"))
}

func cmdEcho(d *Dispatcher, cs *ConnState, a *Args) Response {
	msg, err := a.Pop("message")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}
	return bulkResponse(msg)
}

func cmdGet(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	val, ok, err := d.Store.Get(key)
	if err != nil {
		return errToResponse(err)
	}
	if !ok {
		return nullBulkResponse()
	}
	return bulkResponse(val)
}

func cmdSet(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	val, err := a.Pop("value")
	if err != nil {
		return errToResponse(err)
	}

	var opts store.SetOpts

	exVal, hasEx, err := a.PopOptionalNamed("EX")
	if err != nil {
		return errToResponse(err)
	}
	pxVal, hasPx, err := a.PopOptionalNamed("PX")
	if err != nil {
		return errToResponse(err)
	}
	if hasEx && hasPx {
		return errResponse("ERR syntax error")
	}
	if hasEx {
		secs, perr := strconv.ParseInt(string(exVal), 10, 64)
		if perr != nil {
			return errResponse("ERR value is not an integer or out of range")
		}
		opts.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
	if hasPx {
		ms, perr := strconv.ParseInt(string(pxVal), 10, 64)
		if perr != nil {
			return errResponse("ERR value is not an integer or out of range")
		}
		opts.ExpiresAt = time.Now().Add(time.Duration(ms) * time.Millisecond)
	}

	nx := a.PopOptionalFlag("NX")
	xx := a.PopOptionalFlag("XX")
	if nx && xx {
		return errResponse("ERR syntax error")
	}
	opts.OnlyIfAbsent = nx
	opts.OnlyIfPresent = xx

	opts.KeepTTL = a.PopOptionalFlag("KEEPTTL")
	if opts.KeepTTL && (hasEx || hasPx) {
		return errResponse("ERR syntax error")
	}

	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	ok, err := d.Store.Set(key, val, opts)
	if err != nil {
		return errToResponse(err)
	}
	if !ok {
		return nullBulkResponse()
	}
	return okResponse()
}

func cmdGetSet(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	val, err := a.Pop("value")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	prev, had, err := d.Store.GetSet(key, val)
	if err != nil {
		return errToResponse(err)
	}
	if !had {
		return nullBulkResponse()
	}
	return bulkResponse(prev)
}

func cmdAppend(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	val, err := a.Pop("value")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.Append(key, val)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdStrLen(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.StrLen(key)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdIncr(d *Dispatcher, cs *ConnState, a *Args) Response {
	return incrByN(d, a, 1)
}

func cmdDecr(d *Dispatcher, cs *ConnState, a *Args) Response {
	return incrByN(d, a, -1)
}

func incrByN(d *Dispatcher, a *Args, delta int64) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.IncrBy(key, delta)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(n)
}

func cmdIncrBy(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	delta, err := a.PopInt("increment")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.IncrBy(key, delta)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(n)
}

func cmdDecrBy(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	delta, err := a.PopInt("decrement")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.IncrBy(key, -delta)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(n)
}

func cmdIncrByFloat(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	delta, err := a.PopFloat("increment")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	out, err := d.Store.IncrByFloat(key, delta)
	if err != nil {
		return errToResponse(err)
	}
	return bulkResponse(out)
}
