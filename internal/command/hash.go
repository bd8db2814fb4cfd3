package command

func cmdHSet(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	rest := a.PopRest()
	if len(rest) == 0 || len(rest)%2 != 0 {
		return errResponse("ERR wrong number of arguments for 'hset' command")
	}

	fields := make(map[string]string, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		fields[string(rest[i])] = string(rest[i+1])
	}

	n, err := d.Store.HSet(key, fields)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdHGet(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	field, err := a.PopString("field")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	val, ok, err := d.Store.HGet(key, field)
	if err != nil {
		return errToResponse(err)
	}
	if !ok {
		return nullBulkResponse()
	}
	return bulkStringResponse(val)
}

func cmdHDel(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	fields := toStrings(a.PopRest())
	if len(fields) == 0 {
		return errResponse("ERR wrong number of arguments for 'hdel' command")
	}

	n, err := d.Store.HDel(key, fields...)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdHGetAll(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	fields, err := d.Store.HGetAll(key)
	if err != nil {
		return errToResponse(err)
	}
	out := make([]string, 0, len(fields)*2)
	for f, v := range fields {
		out = append(out, f, v)
	}
	return stringsArrayResponse(out)
}

func cmdHLen(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n, err := d.Store.HLen(key)
	if err != nil {
		return errToResponse(err)
	}
	return intResponse(int64(n))
}

func cmdHExists(d *Dispatcher, cs *ConnState, a *Args) Response {
	key, err := a.PopString("key")
	if err != nil {
		return errToResponse(err)
	}
	field, err := a.PopString("field")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	ok, err := d.Store.HExists(key, field)
	if err != nil {
		return errToResponse(err)
	}
	if ok {
		return intResponse(1)
	}
	return intResponse(0)
}
