package pathutil

import "sync"

// Documents are shallow; builders grown past maxPooledDepth by a deeply
// nested schema are left to the garbage collector.
const (
	pooledDepth    = 16
	maxPooledDepth = 128
)

var builders = sync.Pool{
	New: func() any {
		return &PathBuilder{segments: make([]string, 0, pooledDepth)}
	},
}

// Get returns an empty pooled PathBuilder with root pushed as its first
// segment. An empty root leaves the builder empty.
func Get(root string) *PathBuilder {
	p := builders.Get().(*PathBuilder)
	p.Reset()
	if root != "" {
		p.Push(root)
	}
	return p
}

// Put returns p to the pool.
func Put(p *PathBuilder) {
	if p == nil || cap(p.segments) > maxPooledDepth {
		return
	}
	builders.Put(p)
}
