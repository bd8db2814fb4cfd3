package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mediocregopher/tiniredis/internal/resp"
	"github.com/mediocregopher/tiniredis/internal/store"
	"github.com/mediocregopher/tiniredis/internal/waiter"
)

func formatStreamID(id store.StreamID) string {
	return fmt.Sprintf("%d-%d", id.Ms, id.Seq)
}

// parseXAddID resolves the id argument to XADD ("*", "ms-*", "ms-seq", or a
// bare "ms") against the stream's current top id, which the caller must
// have observed under the same store lock this id is then inserted with
// (§9's "observe top id and generate seq atomically" design note).
func parseXAddID(s string, topID store.StreamID, topExists bool) (store.StreamID, error) {
	autoSeq := func(ms uint64) uint64 {
		if topExists && topID.Ms == ms {
			return topID.Seq + 1
		}
		return 0
	}

	if s == "*" {
		ms := uint64(time.Now().UnixMilli())
		return store.StreamID{Ms: ms, Seq: autoSeq(ms)}, nil
	}

	parts := strings.SplitN(s, "-", 2)
	ms, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return store.StreamID{}, syntaxErrorf("ERR Invalid stream ID specified as stream command argument")
	}
	if len(parts) == 1 || parts[1] == "*" {
		return store.StreamID{Ms: ms, Seq: autoSeq(ms)}, nil
	}
	seq, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return store.StreamID{}, syntaxErrorf("ERR Invalid stream ID specified as stream command argument")
	}
	return store.StreamID{Ms: ms, Seq: seq}, nil
}

// parseRangeID resolves an XRANGE/XREAD endpoint: the "-"/"+" sentinels, a
// bare ms (defaulting its seq to 0 for a start bound or the max seq for an
// end bound), or a full "ms-seq" pair.
func parseRangeID(s string, isStart bool) (store.StreamID, error) {
	switch s {
	case "-":
		return store.StreamID{}, nil
	case "+":
		return store.StreamID{Ms: math.MaxUint64, Seq: math.MaxUint64}, nil
	}

	parts := strings.SplitN(s, "-", 2)
	ms, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return store.StreamID{}, syntaxErrorf("ERR Invalid stream ID specified as stream command argument")
	}
	if len(parts) == 1 {
		if isStart {
			return store.StreamID{Ms: ms, Seq: 0}, nil
		}
		return store.StreamID{Ms: ms, Seq: math.MaxUint64}, nil
	}
	seq, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return store.StreamID{}, syntaxErrorf("ERR Invalid stream ID specified as stream command argument")
	}
	return store.StreamID{Ms: ms, Seq: seq}, nil
}

func streamEntryValue(e store.StreamEntry) resp.Value {
	fields := make([]resp.Value, 0, len(e.Fields)*2)
	for _, f := range e.Fields {
		fields = append(fields, resp.NewBulkStringFromString(f.Field), resp.NewBulkString(f.Value))
	}
	return resp.NewArray(
		resp.NewBulkStringFromString(formatStreamID(e.ID)),
		resp.NewArray(fields...),
	)
}

func cmdXAdd(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	idArg, err := a.PopString("id")
	if err != nil {
		return errToResponse(err)
	}
	rest := a.PopRest()
	if len(rest) == 0 || len(rest)%2 != 0 {
		return errResponse("ERR wrong number of arguments for 'xadd' command")
	}
	fields := make([]store.StreamField, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		fields[i/2] = store.StreamField{Field: string(rest[i]), Value: rest[i+1]}
	}

	var id store.StreamID
	var xaddErr error
	d.Store.WithLock(func() {
		topID, topExists, terr := d.Store.XTopIDLocked(key)
		if terr != nil {
			xaddErr = terr
			return
		}
		id, xaddErr = parseXAddID(idArg, topID, topExists)
		if xaddErr != nil {
			return
		}
		id, xaddErr = d.Store.XAddLocked(key, id, fields)
	})
	if xaddErr != nil {
		return errToResponse(xaddErr)
	}

	d.XRead.Notify(key)
	return bulkStringResponse(formatStreamID(id))
}

func cmdXLen(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.XLen(key)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdXRange(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	startArg, err := a.PopString("start")
	if err != nil {
		return errToResponse(err)
	}
	endArg, err := a.PopString("end")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	start, err := parseRangeID(startArg, true)
	if err != nil {
		return errToResponse(err)
	}
	end, err := parseRangeID(endArg, false)
	if err != nil {
		return errToResponse(err)
	}

	entries, err := d.Store.XRange(key, start, end)
	if err != nil {
		return errToResponse(err)
	}
	vs := make([]resp.Value, len(entries))
	for i, e := range entries {
		vs[i] = streamEntryValue(e)
	}
	return arrayResponse(vs...)
}

// cmdXRead implements "XREAD [BLOCK millis] STREAMS key [key ...] id [id ...]".
func cmdXRead(d *Dispatcher, cs *ConnState, a *Args) Response {
	blockArg, hasBlock, err := a.PopOptionalNamed("BLOCK")
	if err != nil {
		return errToResponse(err)
	}

	streamsKw, err := a.PopString("STREAMS")
	if err != nil {
		return errToResponse(err)
	}
	if !strings.EqualFold(streamsKw, "STREAMS") {
		return errResponse("ERR syntax error")
	}

	rest := a.PopRest()
	if len(rest) == 0 || len(rest)%2 != 0 {
		return errResponse("ERR Unbalanced XREAD list of streams: for each stream key an ID or '$' must be specified.")
	}
	n := len(rest) / 2
	keys := toStrings(rest[:n])
	idArgs := toStrings(rest[n:])

	queries := make([]waiter.StreamQuery, n)
	for i := range keys {
		if idArgs[i] == "$" {
			topID, _, terr := d.Store.XTopID(keys[i])
			if terr != nil {
				return errToResponse(terr)
			}
			queries[i] = waiter.StreamQuery{Key: keys[i], Start: topID}
			continue
		}
		id, perr := parseRangeID(idArgs[i], false)
		if perr != nil {
			return errToResponse(perr)
		}
		queries[i] = waiter.StreamQuery{Key: keys[i], Start: id}
	}

	var timeout time.Duration
	if hasBlock {
		ms, perr := parseIntArg(blockArg)
		if perr != nil {
			return errResponse("ERR timeout is not an integer or out of range")
		}
		timeout = time.Duration(ms) * time.Millisecond

		ch := d.XRead.Wait(queries, timeout)
		out := make(chan resp.Value, 1)
		go func() {
			res := <-ch
			out <- xreadResultValue(res)
		}()
		return Response{Kind: KindBlock, Block: out}
	}

	var results []waiter.StreamResult
	for _, q := range queries {
		entries, rerr := d.Store.XReadAfter(q.Key, q.Start)
		if rerr != nil {
			return errToResponse(rerr)
		}
		if len(entries) > 0 {
			results = append(results, waiter.StreamResult{Key: q.Key, Entries: entries})
		}
	}
	if len(results) == 0 {
		return nullArrayResponse()
	}
	return xreadResultValue(waiter.XReadResult{Results: results})
}

func xreadResultValue(res waiter.XReadResult) resp.Value {
	if res.TimedOut || len(res.Results) == 0 {
		return resp.NewNullArray()
	}
	vs := make([]resp.Value, len(res.Results))
	for i, r := range res.Results {
		entries := make([]resp.Value, len(r.Entries))
		for j, e := range r.Entries {
			entries[j] = streamEntryValue(e)
		}
		vs[i] = resp.NewArray(resp.NewBulkStringFromString(r.Key), resp.NewArray(entries...))
	}
	return resp.NewArray(vs...)
}
