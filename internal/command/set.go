package command

func cmdSAdd(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	members := toStrings(a.PopRest())
	if len(members) == 0 {
		return errResponse("ERR wrong number of arguments for 'sadd' command")
	}

	n, err := d.Store.SAdd(key, members...)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdSRem(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	members := toStrings(a.PopRest())
	if len(members) == 0 {
		return errResponse("ERR wrong number of arguments for 'srem' command")
	}

	n, err := d.Store.SRem(key, members...)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdSCard(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.SCard(key)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdSMembers(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	members, err := d.Store.SMembers(key)
	if err != nil {
		return errToResponse(err)
	}
	return stringsArrayResponse(members)
}

func cmdSIsMember(d *Dispatcher, cs *ConnState, a *Args) Response {
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

	ok, err := d.Store.SIsMember(key, member)
	if err != nil {
		return errToResponse(err)
	}
	if ok {
		return intResponse(1)
	}
	return intResponse(0)
}

func cmdSPop(d *Dispatcher, cs *ConnState, a *Args) Response {
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

	members, err := d.Store.SPop(key, count)
	if err != nil {
		return errToResponse(err)
	}
	if !hasCount {
		if len(members) == 0 {
			return nullBulkResponse()
		}
		return bulkStringResponse(members[0])
	}
	return stringsArrayResponse(members)
}

func cmdSRandMember(d *Dispatcher, cs *ConnState, a *Args) Response {
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

	members, err := d.Store.SRandMember(key, count)
	if err != nil {
		return errToResponse(err)
	}
	if !hasCount {
		if len(members) == 0 {
			return nullBulkResponse()
		}
		return bulkStringResponse(members[0])
	}
	return stringsArrayResponse(members)
}
