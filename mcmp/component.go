// Package mcmp organizes a program into a tree of Components: the server,
// each listener, each background task, and the store itself are each given
// their own Component. A Component carries a namespaced key/value store
// (used by mcfg, mlog, and mrun to attach config params, loggers, and
// lifecycle hooks respectively) and a path which identifies its position in
// the tree.
package mcmp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mediocregopher/tiniredis/mctx"
)

type child struct {
	*Component
	name string
}

// Component describes a single component of a program, and holds onto
// key/values for that component for use in generic libraries which
// instantiate those components.
//
// A new Component, i.e. the root Component in the hierarchy, can be
// initialized by doing: new(Component).
//
// Methods on Component are thread-safe.
type Component struct {
	l sync.RWMutex

	path     []string
	parent   *Component
	children []child

	kv  map[interface{}]interface{}
	ctx context.Context
}

// SetValue sets the given key to the given value on the Component,
// overwriting any previous value for that key.
func (c *Component) SetValue(key, value interface{}) {
	c.l.Lock()
	defer c.l.Unlock()
	if c.kv == nil {
		c.kv = make(map[interface{}]interface{}, 1)
	}
	c.kv[key] = value
}

// UpdateValue atomically replaces the value stored at key with the return
// of fn, which is called with the previous value (nil if unset).
func (c *Component) UpdateValue(key interface{}, fn func(interface{}) interface{}) {
	c.l.Lock()
	defer c.l.Unlock()
	if c.kv == nil {
		c.kv = make(map[interface{}]interface{}, 1)
	}
	c.kv[key] = fn(c.kv[key])
}

func (c *Component) value(key interface{}) (interface{}, bool) {
	c.l.RLock()
	defer c.l.RUnlock()
	if c.kv == nil {
		return nil, false
	}
	value, ok := c.kv[key]
	return value, ok
}

// Value returns the value which has been set for the given key.
func (c *Component) Value(key interface{}) interface{} {
	value, _ := c.value(key)
	return value
}

// InheritedValue returns the value which has been set for the given key. It
// first looks for the key on the receiver Component. If not found, it looks
// on its parent Component, and so on, until the key is found. If the key is
// not found on the root Component then false is returned.
func (c *Component) InheritedValue(key interface{}) (interface{}, bool) {
	value, ok := c.value(key)
	if ok {
		return value, ok
	} else if c.parent == nil {
		return nil, false
	}
	return c.parent.InheritedValue(key)
}

// HasValue returns true if the given key has had a value set on it with
// SetValue.
func (c *Component) HasValue(key interface{}) bool {
	c.l.RLock()
	defer c.l.RUnlock()
	_, ok := c.kv[key]
	return ok
}

// Child returns a new child component of the method receiver. The child will
// have the given name, and its Path will be the receiver's path with the
// name appended. The child does not inherit any of the receiver's
// key/value pairs.
//
// If a child of the given name has already been created this method will
// panic.
func (c *Component) Child(name string) *Component {
	c.l.Lock()
	defer c.l.Unlock()
	for _, ch := range c.children {
		if ch.name == name {
			panic(fmt.Sprintf("child with name %q already exists", name))
		}
	}

	childComp := &Component{
		path:   append(append([]string{}, c.path...), name),
		parent: c,
	}
	c.children = append(c.children, child{name: name, Component: childComp})
	return childComp
}

// Children returns all Components created via the Child method on this
// Component, in the order they were created.
func (c *Component) Children() []*Component {
	c.l.RLock()
	defer c.l.RUnlock()
	out := make([]*Component, len(c.children))
	for i := range c.children {
		out[i] = c.children[i].Component
	}
	return out
}

// Parent returns the Component's parent and true, or nil and false if this
// is the root Component.
func (c *Component) Parent() (*Component, bool) {
	c.l.RLock()
	defer c.l.RUnlock()
	return c.parent, c.parent != nil
}

// Root walks up the Component's ancestors and returns the root of the tree.
func Root(c *Component) *Component {
	for {
		parent, ok := c.Parent()
		if !ok {
			return c
		}
		c = parent
	}
}

// Name returns the name this Component was created with (via the Child
// method), or false if this Component is the root Component.
func (c *Component) Name() (string, bool) {
	c.l.RLock()
	defer c.l.RUnlock()
	if len(c.path) == 0 {
		return "", false
	}
	return c.path[len(c.path)-1], true
}

// Path returns the sequence of names which were passed into Child calls in
// order to create this Component.
func (c *Component) Path() []string {
	c.l.RLock()
	defer c.l.RUnlock()
	out := make([]string, len(c.path))
	copy(out, c.path)
	return out
}

func (c *Component) pathStr() string {
	path := make([]string, len(c.path))
	copy(path, c.path)
	for i := range path {
		path[i] = strings.ReplaceAll(path[i], "/", `\/`)
	}
	return "/" + strings.Join(path, "/")
}

type annotateKey string

func (c *Component) getCtx() context.Context {
	if c.ctx == nil {
		c.ctx = mctx.Annotated(annotateKey("component"), c.pathStr())
	}
	return c.ctx
}

// Annotate annotates the Component's internal Context in-place, such that
// the annotations will be included in any future calls to Context.
func (c *Component) Annotate(kv ...interface{}) {
	c.l.Lock()
	defer c.l.Unlock()
	c.ctx = mctx.Annotate(c.getCtx(), kv...)
}

// Context returns a Context which has been annotated with any annotations
// from Annotate calls to this Component, as well as a default annotation
// identifying the Component's path.
func (c *Component) Context() context.Context {
	c.l.Lock()
	defer c.l.Unlock()
	return c.getCtx()
}

// BreadthFirstVisit visits this Component and all of its children, and
// their children, etc, in breadth-first order. If the callback returns
// false then the function returns without visiting any more Components.
func BreadthFirstVisit(c *Component, callback func(*Component) bool) {
	queue := []*Component{c}
	for len(queue) > 0 {
		if !callback(queue[0]) {
			return
		}
		queue = append(queue, queue[0].Children()...)
		queue = queue[1:]
	}
}
