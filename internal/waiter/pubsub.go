package waiter

import (
	"path"
	"sync"

	"github.com/mediocregopher/tiniredis/internal/resp"
)

// ClientID identifies a subscriber to the Hub. Callers mint these (the
// connection layer uses a ksuid per connection).
type ClientID string

type subscriber struct {
	ch       chan resp.Value
	channels map[string]struct{}
	patterns map[string]struct{}
}

func (s *subscriber) total() int {
	return len(s.channels) + len(s.patterns)
}

// Hub is the pub/sub fan-out point: one mutex guarding every subscriber's
// channel/pattern sets, so subscribe/unsubscribe/publish never race each
// other. Each subscriber owns a buffered channel the hub only ever sends
// on, giving per-subscriber FIFO delivery with no cross-subscriber ordering
// guarantee, matching the store's own "single lock, not one per key"
// design.
type Hub struct {
	mu   sync.Mutex
	subs map[ClientID]*subscriber
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[ClientID]*subscriber)}
}

// Register creates a subscriber slot for id and returns the channel its
// messages and subscribe/unsubscribe acks arrive on. The connection layer
// calls this once, on the first SUBSCRIBE/PSUBSCRIBE of a connection.
func (h *Hub) Register(id ClientID) <-chan resp.Value {
	ch := make(chan resp.Value, 256)
	h.mu.Lock()
	h.subs[id] = &subscriber{
		ch:       ch,
		channels: make(map[string]struct{}),
		patterns: make(map[string]struct{}),
	}
	h.mu.Unlock()
	return ch
}

// Unregister removes id's subscriber slot and closes its channel. Called
// when a connection leaves subscribe mode or disconnects.
func (h *Hub) Unregister(id ClientID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		close(s.ch)
		delete(h.subs, id)
	}
}

// Subscribe adds channels to id's subscription set, returning one
// [subscribe, channel, count] frame per channel in the order given.
func (h *Hub) Subscribe(id ClientID, channels []string) []resp.Value {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.subs[id]
	if s == nil {
		return nil
	}
	out := make([]resp.Value, 0, len(channels))
	for _, c := range channels {
		s.channels[c] = struct{}{}
		out = append(out, subAckFrame("subscribe", c, s.total()))
	}
	return out
}

// Unsubscribe removes channels from id's subscription set, or every
// currently-subscribed channel if channels is empty, returning one
// [unsubscribe, channel, count] frame per channel removed.
func (h *Hub) Unsubscribe(id ClientID, channels []string) []resp.Value {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.subs[id]
	if s == nil {
		return nil
	}
	if len(channels) == 0 {
		for c := range s.channels {
			channels = append(channels, c)
		}
	}
	out := make([]resp.Value, 0, len(channels))
	for _, c := range channels {
		delete(s.channels, c)
		out = append(out, subAckFrame("unsubscribe", c, s.total()))
	}
	return out
}

// PSubscribe is Subscribe's glob-pattern counterpart.
func (h *Hub) PSubscribe(id ClientID, patterns []string) []resp.Value {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.subs[id]
	if s == nil {
		return nil
	}
	out := make([]resp.Value, 0, len(patterns))
	for _, p := range patterns {
		s.patterns[p] = struct{}{}
		out = append(out, subAckFrame("psubscribe", p, s.total()))
	}
	return out
}

// PUnsubscribe is Unsubscribe's glob-pattern counterpart.
func (h *Hub) PUnsubscribe(id ClientID, patterns []string) []resp.Value {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.subs[id]
	if s == nil {
		return nil
	}
	if len(patterns) == 0 {
		for p := range s.patterns {
			patterns = append(patterns, p)
		}
	}
	out := make([]resp.Value, 0, len(patterns))
	for _, p := range patterns {
		delete(s.patterns, p)
		out = append(out, subAckFrame("punsubscribe", p, s.total()))
	}
	return out
}

// Publish sends payload to every subscriber whose channel set contains
// channel, or whose pattern set glob-matches it, and returns the count
// that actually received the frame (a subscriber whose buffer is full is
// skipped, not counted — the hub never blocks a publisher on a slow
// reader).
func (h *Hub) Publish(channel string, payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0
	for _, s := range h.subs {
		if _, ok := s.channels[channel]; ok {
			if deliver(s.ch, messageFrame(channel, payload)) {
				count++
			}
			continue
		}
		for p := range s.patterns {
			if ok, _ := path.Match(p, channel); ok {
				if deliver(s.ch, pmessageFrame(p, channel, payload)) {
					count++
				}
				break
			}
		}
	}
	return count
}

func deliver(ch chan resp.Value, v resp.Value) bool {
	select {
	case ch <- v:
		return true
	default:
		return false
	}
}

func subAckFrame(kind, channel string, count int) resp.Value {
	return resp.NewArray(
		resp.NewBulkStringFromString(kind),
		resp.NewBulkStringFromString(channel),
		resp.NewInteger(int64(count)),
	)
}

func messageFrame(channel string, payload []byte) resp.Value {
	return resp.NewArray(
		resp.NewBulkStringFromString("message"),
		resp.NewBulkStringFromString(channel),
		resp.NewBulkString(payload),
	)
}

func pmessageFrame(pattern, channel string, payload []byte) resp.Value {
	return resp.NewArray(
		resp.NewBulkStringFromString("pmessage"),
		resp.NewBulkStringFromString(pattern),
		resp.NewBulkStringFromString(channel),
		resp.NewBulkString(payload),
	)
}

// PongFrame is the reply to PING while in subscribe mode.
func PongFrame() resp.Value {
	return resp.NewArray(resp.NewBulkStringFromString("pong"), resp.NewBulkStringFromString(""))
}
