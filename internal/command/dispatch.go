// Package command parses RESP argument arrays into commands, executes them
// against a Dispatcher's store and waiter tasks, and produces a discriminated
// Response (§4.4): an immediate value, a channel for a blocking operation, a
// subscribe-mode transition, a transaction-mode transition, or an auth
// attempt for the connection layer to judge.
package command

import (
	"strings"

	"github.com/mediocregopher/tiniredis/internal/store"
	"github.com/mediocregopher/tiniredis/internal/waiter"
)

// Dispatcher holds everything a command handler needs to execute: the
// shared store and the three long-lived waiter tasks, plus the handful of
// configuration values commands can observe (CONFIG GET, AUTH).
type Dispatcher struct {
	Store *store.Store
	Pop   *waiter.PopQueue
	XRead *waiter.XReadQueue
	Hub   *waiter.Hub

	Password   string
	Dir        string
	DBFilename string

	// RequestShutdown, if set, is called by the connection layer when a
	// client issues SHUTDOWN, so the server controller can run the same
	// shutdown path a SIGINT/SIGTERM would trigger. noSave mirrors the
	// SHUTDOWN NOSAVE flag.
	RequestShutdown func(noSave bool)
}

// ConnState is the per-connection state a Dispatcher's Execute consults:
// whether AUTH has succeeded, whether the connection is in subscribe mode,
// and its client id for the pub/sub hub. MULTI/EXEC queuing state lives in
// internal/txn, which calls Execute once per queued command on EXEC.
type ConnState struct {
	ClientID        waiter.ClientID
	Authenticated   bool
	InSubscribeMode bool
}

// NewConnState returns a fresh, unauthenticated, non-subscribed state for a
// newly accepted connection.
func NewConnState(id waiter.ClientID) *ConnState {
	return &ConnState{ClientID: id}
}

type handlerFunc func(d *Dispatcher, cs *ConnState, a *Args) Response

var commandTable = map[string]handlerFunc{
	"PING":   cmdPing,
	"ECHO":   cmdEcho,
	"GET":    cmdGet,
	"SET":    cmdSet,
	"GETSET": cmdGetSet,
	"APPEND": cmdAppend,
	"STRLEN": cmdStrLen,
	"INCR":   cmdIncr,
	"DECR":   cmdDecr,
	"INCRBY": cmdIncrBy,
	"DECRBY": cmdDecrBy,
	"INCRBYFLOAT": cmdIncrByFloat,

	"TYPE":     cmdType,
	"TTL":      cmdTTL,
	"DEL":      cmdDel,
	"EXISTS":   cmdExists,
	"EXPIRE":   cmdExpire,
	"PEXPIRE":  cmdPExpire,
	"PERSIST":  cmdPersist,
	"RENAME":   cmdRename,
	"KEYS":     cmdKeys,
	"DBSIZE":   cmdDBSize,
	"FLUSHDB":  cmdFlushDB,
	"SHUTDOWN": cmdShutdown,
	"WAIT":     cmdWait,

	"LPUSH":  cmdLPush,
	"RPUSH":  cmdRPush,
	"LPOP":   cmdLPop,
	"RPOP":   cmdRPop,
	"LLEN":   cmdLLen,
	"LRANGE": cmdLRange,
	"BLPOP":  cmdBLPop,
	"BRPOP":  cmdBRPop,

	"SADD":       cmdSAdd,
	"SREM":       cmdSRem,
	"SCARD":      cmdSCard,
	"SMEMBERS":   cmdSMembers,
	"SISMEMBER":  cmdSIsMember,
	"SPOP":       cmdSPop,
	"SRANDMEMBER": cmdSRandMember,

	"ZADD":    cmdZAdd,
	"ZREM":    cmdZRem,
	"ZSCORE":  cmdZScore,
	"ZCARD":   cmdZCard,
	"ZRANGE":  cmdZRange,
	"ZRANK":   cmdZRank,
	"ZINCRBY": cmdZIncrBy,

	"HSET":    cmdHSet,
	"HGET":    cmdHGet,
	"HDEL":    cmdHDel,
	"HGETALL": cmdHGetAll,
	"HLEN":    cmdHLen,
	"HEXISTS": cmdHExists,

	"XADD":   cmdXAdd,
	"XLEN":   cmdXLen,
	"XRANGE": cmdXRange,
	"XREAD":  cmdXRead,

	"GEOADD":    cmdGeoAdd,
	"GEOPOS":    cmdGeoPos,
	"GEODIST":   cmdGeoDist,
	"GEOSEARCH": cmdGeoSearch,

	"SUBSCRIBE":     cmdSubscribe,
	"UNSUBSCRIBE":   cmdUnsubscribe,
	"PSUBSCRIBE":    cmdPSubscribe,
	"PUNSUBSCRIBE":  cmdPUnsubscribe,
	"SSUBSCRIBE":    cmdSubscribe,
	"SUNSUBSCRIBE":  cmdUnsubscribe,
	"PUBLISH":       cmdPublish,

	"MULTI":   cmdMulti,
	"EXEC":    cmdExec,
	"DISCARD": cmdDiscard,

	"AUTH":       cmdAuth,
	"CONFIG":     cmdConfig,
	"QUIT":       cmdQuit,
	"RESET":      cmdReset,
}

// subscribeModeAllowed lists the commands §4.6 permits while a connection is
// in subscribe mode; everything else draws an error but leaves the mode
// unchanged.
var subscribeModeAllowed = map[string]bool{
	"PING": true, "SUBSCRIBE": true, "UNSUBSCRIBE": true,
	"PSUBSCRIBE": true, "PUNSUBSCRIBE": true,
	"SSUBSCRIBE": true, "SUNSUBSCRIBE": true,
	"QUIT": true, "RESET": true,
}

// Execute parses and runs a single command's argument array, enforcing the
// AUTH gate (§4.8) and the subscribe-mode command restriction (§4.6) before
// dispatching to the matching handler.
func (d *Dispatcher) Execute(cs *ConnState, argv [][]byte) Response {
	if len(argv) == 0 {
		return errResponse("ERR empty command")
	}
	name := strings.ToUpper(string(argv[0]))

	if d.Password != "" && !cs.Authenticated && name != "AUTH" {
		return errResponse("NOAUTH Authentication required")
	}
	if cs.InSubscribeMode && !subscribeModeAllowed[name] {
		return errResponsef("ERR Can't execute '%s': only (P|S)SUBSCRIBE / (P|S)UNSUBSCRIBE / PING / QUIT / RESET are allowed in this context", strings.ToLower(name))
	}

	h, ok := commandTable[name]
	if !ok {
		return errResponsef("ERR unknown command '%s'", strings.ToLower(name))
	}
	return h(d, cs, newArgs(argv[1:]))
}
