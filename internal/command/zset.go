package command

import "github.com/mediocregopher/tiniredis/internal/resp"

func cmdZAdd(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	rest := a.PopRest()
	if len(rest) == 0 || len(rest)%2 != 0 {
		return errResponse("ERR wrong number of arguments for 'zadd' command")
	}

	scores := make(map[string]float64, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		score, perr := parseFloatArg(string(rest[i]))
		if perr != nil {
			return errResponse("ERR value is not a valid float")
		}
		scores[string(rest[i+1])] = score
	}

	n, err := d.Store.ZAdd(key, scores)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdZRem(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	members := toStrings(a.PopRest())
	if len(members) == 0 {
		return errResponse("ERR wrong number of arguments for 'zrem' command")
	}

	n, err := d.Store.ZRem(key, members...)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdZScore(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	member, err := a.PopString("member")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	score, ok, err := d.Store.ZScore(key, member)
	if err != nil {
		return errToResponse(err)
	}
	if !ok {
		return nullBulkResponse()
	}
	return bulkStringResponse(formatScore(score))
}

func cmdZCard(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.ZCard(key)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdZRange(d *Dispatcher, cs *ConnState, a *Args) Response {
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
	withScores := a.PopOptionalFlag("WITHSCORES")
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	members, err := d.Store.ZRange(key, int(start), int(stop))
	if err != nil {
		return errToResponse(err)
	}

	if !withScores {
		out := make([]string, len(members))
		for i, m := range members {
			out[i] = m.Member
		}
		return stringsArrayResponse(out)
	}

	vs := make([]resp.Value, 0, len(members)*2)
	for _, m := range members {
		vs = append(vs, resp.NewBulkStringFromString(m.Member), resp.NewBulkStringFromString(formatScore(m.Score)))
	}
	return arrayResponse(vs...)
}

func cmdZRank(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	member, err := a.PopString("member")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	rank, ok, err := d.Store.ZRank(key, member)
	if err != nil {
		return errToResponse(err)
	}
	if !ok {
		return nullBulkResponse()
	}
	return intResponse(int64(rank))
}

func cmdZIncrBy(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	delta, err := a.PopFloat("increment")
	if err != nil {
		return errToResponse(err)
	}
	member, err := a.PopString("member")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	score, err := d.Store.ZIncrBy(key, member, delta)
	if err != nil {
		return errToResponse(err)
	}
	return bulkStringResponse(formatScore(score))
}
