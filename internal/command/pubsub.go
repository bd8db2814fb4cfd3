package command

// cmdSubscribe, cmdUnsubscribe, cmdPSubscribe, and cmdPUnsubscribe only
// parse their channel/pattern list here; the actual Hub registration and
// ack-frame emission happens in the connection loop, which owns the
// per-connection ClientID's registered channel and can stream later
// Publish deliveries into the same socket.

func cmdSubscribe(d *Dispatcher, cs *ConnState, a *Args) Response {
	channels := toStrings(a.PopRest())
	if len(channels) == 0 {
		return errResponse("ERR wrong number of arguments for 'subscribe' command")
	}
	return Response{Kind: KindSubscribe, SubOp: SubOpSubscribe, Channels: channels}
}

func cmdUnsubscribe(d *Dispatcher, cs *ConnState, a *Args) Response {
	channels := toStrings(a.PopRest())
	return Response{Kind: KindSubscribe, SubOp: SubOpUnsubscribe, Channels: channels}
}

func cmdPSubscribe(d *Dispatcher, cs *ConnState, a *Args) Response {
	patterns := toStrings(a.PopRest())
	if len(patterns) == 0 {
		return errResponse("ERR wrong number of arguments for 'psubscribe' command")
	}
	return Response{Kind: KindSubscribe, SubOp: SubOpPSubscribe, Channels: patterns}
}

func cmdPUnsubscribe(d *Dispatcher, cs *ConnState, a *Args) Response {
	patterns := toStrings(a.PopRest())
	return Response{Kind: KindSubscribe, SubOp: SubOpPUnsubscribe, Channels: patterns}
}

func cmdPublish(d *Dispatcher, cs *ConnState, a *Args) Response {
	channel, err := a.PopString("channel")
	if err != nil {
		return errToResponse(err)
	}
	message, err := a.Pop("message")
	if err != nil {
		return errToResponse(err)
	}
	if err := a.Done(); err != nil {
		return errToResponse(err)
	}

	n := d.Hub.Publish(channel, message)
	return intResponse(int64(n))
}
