package command

import (
	"time"

	"github.com/mediocregopher/tiniredis/internal/resp"
	"github.com/mediocregopher/tiniredis/internal/waiter"
)

func cmdLPush(d *Dispatcher, cs *ConnState, a *Args) Response {
	n, err := pushCmd(d, a, true)
	if err != nil {
		return errToResponse(err)
	}
	return n
}

func cmdRPush(d *Dispatcher, cs *ConnState, a *Args) Response {
	n, err := pushCmd(d, a, false)
	if err != nil {
		return errToResponse(err)
	}
	return n
}

func pushCmd(d *Dispatcher, a *Args, head bool) (Response, error) {
	key, err := a.PopString("key")
	if err != nil {
		return Response{}, err
	}
	vals := a.PopRest()
	if len(vals) == 0 {
		return Response{}, syntaxErrorf("ERR wrong number of arguments for push command")
	}

	var n int
	if head {
		n, err = d.Store.LPushVals(key, vals)
	} else {
		n, err = d.Store.RPushVals(key, vals)
	}
	if err != nil {
		return Response{}, err
	}
	d.Pop.Notify(key)
	return intResponse(int64(n)), nil
}

func cmdLPop(d *Dispatcher, cs *ConnState, a *Args) Response {
	return popCmd(d, a, true)
}

func cmdRPop(d *Dispatcher, cs *ConnState, a *Args) Response {
	return popCmd(d, a, false)
}

func popCmd(d *Dispatcher, a *Args, head bool) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	countArg, hasCount := a.PopOptional()
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	count := 1
	if hasCount {
		n, perr := parseIntArg(countArg)
		if perr != nil {
			return errResponse("ERR value is not an integer or out of range")
		}
		count = n
	}

	var out [][]byte
	if head {
		out, err = d.Store.LPop(key, count)
	} else {
		out, err = d.Store.RPop(key, count)
	}
	if err != nil {
		return errToResponse(err)
	}
	if !hasCount {
		if len(out) == 0 {
			return nullBulkResponse()
		}
		return bulkResponse(out[0])
	}
	if out == nil {
		return nullArrayResponse()
	}
	return bytesArrayResponse(out)
}

func cmdLLen(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.LLen(key)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdLRange(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	start, err := a.PopInt("start")
	if err != nil {
		return errToResponse(err)
	}
	stop, err := a.PopInt("stop")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	vals, err := d.Store.LRange(key, int(start), int(stop))
	if err != nil {
		return errToResponse(err)
	}
	return bytesArrayResponse(vals)
}

func cmdBLPop(d *Dispatcher, cs *ConnState, a *Args) Response {
	return blockingPopCmd(d, a, waiter.Head)
}

func cmdBRPop(d *Dispatcher, cs *ConnState, a *Args) Response {
	return blockingPopCmd(d, a, waiter.Tail)
}

// blockingPopCmd implements BLPOP/BRPOP's "try every key immediately, then
// block on whichever is first to get pushed" contract by racing a
// PopQueue.Wait per key and returning whichever settles first. Redis's real
// BLPOP instead scans keys in argument order inside one waiter registration;
// here each key gets its own waiter and the first to resolve wins, which is
// equivalent given the queue already tries an immediate pop per key before
// blocking.
func blockingPopCmd(d *Dispatcher, a *Args, dir waiter.Direction) Response {
	rest := a.PopRest()
	if len(rest) < 2 {
		return errResponse("ERR wrong number of arguments for pop command")
	}
	keys := toStrings(rest[:len(rest)-1])
	timeoutArg := string(rest[len(rest)-1])

	secs, perr := parseFloatArg(timeoutArg)
	if perr != nil || secs < 0 {
		return errResponse("ERR timeout is not a float or out of range")
	}
	var timeout time.Duration
	if secs > 0 {
		timeout = time.Duration(secs * float64(time.Second))
	}

	chans := make([]<-chan waiter.PopResult, len(keys))
	for i, k := range keys {
		chans[i] = d.Pop.Wait(k, dir, timeout)
	}

	out := make(chan resp.Value, 1)
	go func() {
		cases := chans
		// Fan every per-key channel into a single result by reading
		// whichever fires first; the rest keep a live waiter that the
		// queue reaps on its own timeout.
		result := firstPopResult(cases)
		if result.TimedOut {
			out <- resp.NewNullArray()
			return
		}
		out <- resp.NewArray(
			resp.NewBulkStringFromString(result.Key),
			resp.NewBulkString(result.Element),
		)
	}()

	return Response{Kind: KindBlock, Block: out}
}

func firstPopResult(chans []<-chan waiter.PopResult) waiter.PopResult {
	selectCases := make(chan waiter.PopResult, len(chans))
	for _, ch := range chans {
		ch := ch
		go func() { selectCases <- <-ch }()
	}
	return <-selectCases
}
