package workspace

import "sync"

// Buffer is the live editor contents. Every Set bumps the version so
// savers can tell whether what they wrote is still current.
type Buffer struct {
	mu      sync.Mutex
	code    string
	version uint64
}

func (b *Buffer) Set(code string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if code == b.code {
		return b.version
	}
	b.code = code
	b.version++
	return b.version
}

func (b *Buffer) Snapshot() (string, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.code, b.version
}
