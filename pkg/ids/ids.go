// Package ids provides the identifier generators the store owns.
// None of them derive ids from the current size of a collection.
package ids

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ritzau/dag-ui/pkg/model"
)

// Generator hands out identifiers. Implementations must be safe for concurrent use.
type Generator interface {
	Next() string
}

// UUIDGenerator produces random UUIDs behind an optional prefix
type UUIDGenerator struct {
	prefix string
}

// UUID returns a generator of collision-resistant ids such as "edge-6f1c...".
func UUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

func (g *UUIDGenerator) Next() string {
	return g.prefix + uuid.NewString()
}

// CounterGenerator produces prefix+n for a monotonically increasing n
type CounterGenerator struct {
	prefix string
	next   atomic.Int64
}

// Counter returns a generator whose first id is prefix+start.
func Counter(prefix string, start int64) *CounterGenerator {
	g := &CounterGenerator{prefix: prefix}
	g.next.Store(start)
	return g
}

func (g *CounterGenerator) Next() string {
	return g.prefix + strconv.FormatInt(g.next.Add(1)-1, 10)
}

// CounterAfter returns a counter that starts past the largest numeric id among nodes,
// so generated ids read like the seed ids without colliding with them.
func CounterAfter(prefix string, nodes []model.Node) *CounterGenerator {
	var start int64
	for _, n := range nodes {
		s, ok := strings.CutPrefix(n.ID, prefix)
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		if v >= start {
			start = v + 1
		}
	}
	return Counter(prefix, start)
}

// Func adapts a plain function to Generator
type Func func() string

func (f Func) Next() string {
	return f()
}
