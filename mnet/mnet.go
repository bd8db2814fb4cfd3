// Package mnet extends the standard net package with Component-managed
// listener bootstrapping and some IP-range utilities.
package mnet

import (
	"context"
	"net"
	"strings"

	"github.com/mediocregopher/tiniredis/mcfg"
	"github.com/mediocregopher/tiniredis/mcmp"
	"github.com/mediocregopher/tiniredis/mctx"
	"github.com/mediocregopher/tiniredis/merr"
	"github.com/mediocregopher/tiniredis/mlog"
	"github.com/mediocregopher/tiniredis/mrun"
)

// Listener wraps a net.Listener whose address is configurable via mcfg and
// whose lifecycle (open on Init, close on Shutdown) is driven by mrun.
type Listener struct {
	net.Listener

	cmp *mcmp.Component
}

type listenerOpts struct {
	proto           string
	defaultAddr     string
	closeOnShutdown bool
}

// ListenerOpt adjusts the behavior of InstListener.
type ListenerOpt func(*listenerOpts)

// ListenerProtocol sets the protocol InstListener's Listener uses ("tcp" by
// default). Only stream-oriented protocols ("tcp", "tcp4", "tcp6", "unix")
// are supported.
func ListenerProtocol(proto string) ListenerOpt {
	return func(o *listenerOpts) { o.proto = proto }
}

// ListenerCloseOnShutdown sets whether the Listener is closed when mrun's
// Shutdown event triggers on its Component. Defaults to true.
func ListenerCloseOnShutdown(closeOnShutdown bool) ListenerOpt {
	return func(o *listenerOpts) { o.closeOnShutdown = closeOnShutdown }
}

// ListenerDefaultAddr sets the default value of the "listen-addr" param.
// Defaults to ":6379".
func ListenerDefaultAddr(defaultAddr string) ListenerOpt {
	return func(o *listenerOpts) { o.defaultAddr = defaultAddr }
}

// InstListener instantiates a Listener which opens when the Init event is
// triggered on cmp (via mrun.Init) and closes when the Shutdown event is
// triggered (via mrun.Shutdown).
func InstListener(cmp *mcmp.Component, opts ...ListenerOpt) *Listener {
	lOpts := listenerOpts{
		proto:           "tcp",
		defaultAddr:     ":6379",
		closeOnShutdown: true,
	}
	for _, opt := range opts {
		opt(&lOpts)
	}

	cmp = cmp.Child("net")
	l := &Listener{cmp: cmp}

	addr := mcfg.String(cmp, "listen-addr", lOpts.defaultAddr,
		mcfg.ParamUsage(
			strings.ToUpper(lOpts.proto)+" address to listen on, in [host]:port "+
				"format. If port is 0 a random one is chosen.",
		),
	)

	mrun.InitHook(cmp, func(context.Context) error {
		cmp.Annotate("proto", lOpts.proto, "addr", *addr)

		var err error
		l.Listener, err = net.Listen(lOpts.proto, *addr)
		if err != nil {
			return merr.Wrap(err, cmp.Context())
		}
		cmp.Annotate("addr", l.Listener.Addr().String())

		mlog.From(cmp).Info("listening", cmp.Context())
		return nil
	})

	mrun.ShutdownHook(cmp, func(context.Context) error {
		if !lOpts.closeOnShutdown {
			return nil
		}
		mlog.From(cmp).Info("shutting down listener", cmp.Context())
		return l.Close()
	})

	return l
}

// Accept wraps a call to Accept on the underlying net.Listener, providing
// debug logging of the accepted connection's remote address.
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return conn, err
	}
	mlog.From(l.cmp).Debug("connection accepted",
		mctx.Annotate(l.cmp.Context(), "remoteAddr", conn.RemoteAddr().String()))
	return conn, nil
}

// Close wraps a call to Close on the underlying net.Listener.
func (l *Listener) Close() error {
	mlog.From(l.cmp).Info("listener closing", l.cmp.Context())
	return l.Listener.Close()
}

////////////////////////////////////////////////////////////////////////////

func mustGetCIDRNetwork(cidr string) *net.IPNet {
	_, n, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(err)
	}
	return n
}

// https://en.wikipedia.org/wiki/Reserved_IP_addresses

var reservedCIDRs4 = []*net.IPNet{
	mustGetCIDRNetwork("0.0.0.0/8"),          // current network
	mustGetCIDRNetwork("10.0.0.0/8"),         // private network
	mustGetCIDRNetwork("100.64.0.0/10"),      // private network
	mustGetCIDRNetwork("127.0.0.0/8"),        // localhost
	mustGetCIDRNetwork("169.254.0.0/16"),     // link-local
	mustGetCIDRNetwork("172.16.0.0/12"),      // private network
	mustGetCIDRNetwork("192.0.0.0/24"),       // IETF protocol assignments
	mustGetCIDRNetwork("192.0.2.0/24"),       // documentation and examples
	mustGetCIDRNetwork("192.88.99.0/24"),     // 6to4 Relay
	mustGetCIDRNetwork("192.168.0.0/16"),     // private network
	mustGetCIDRNetwork("198.18.0.0/15"),      // private network
	mustGetCIDRNetwork("198.51.100.0/24"),    // documentation and examples
	mustGetCIDRNetwork("203.0.113.0/24"),     // documentation and examples
	mustGetCIDRNetwork("224.0.0.0/4"),        // IP multicast
	mustGetCIDRNetwork("240.0.0.0/4"),        // reserved
	mustGetCIDRNetwork("255.255.255.255/32"), // limited broadcast address
}

var reservedCIDRs6 = []*net.IPNet{
	mustGetCIDRNetwork("::/128"),        // unspecified address
	mustGetCIDRNetwork("::1/128"),       // loopback address
	mustGetCIDRNetwork("100::/64"),      // discard prefix
	mustGetCIDRNetwork("2001::/32"),     // Teredo tunneling
	mustGetCIDRNetwork("2001:20::/28"),  // ORCHID v2
	mustGetCIDRNetwork("2001:db8::/32"), // documentation and examples
	mustGetCIDRNetwork("2002::/16"),     // 6to4 addressing
	mustGetCIDRNetwork("fc00::/7"),      // unique local
	mustGetCIDRNetwork("fe80::/10"),     // link local
	mustGetCIDRNetwork("ff00::/8"),      // multicast
}

// IsReservedIP returns true if the given valid IP is part of a reserved IP
// range (loopback, private, link-local, documentation, multicast and similar
// blocks). Nothing in tiniredis's server path calls it.
func IsReservedIP(ip net.IP) bool {
	containedBy := func(cidrs []*net.IPNet) bool {
		for _, cidr := range cidrs {
			if cidr.Contains(ip) {
				return true
			}
		}
		return false
	}

	if ip.To4() != nil {
		return containedBy(reservedCIDRs4)
	}
	return containedBy(reservedCIDRs6)
}
