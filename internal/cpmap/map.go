// Package cpmap maps codepoints to glyph index entries.
//
// Codepoints below FastPathLimit are stored in a direct array. All others go
// into a fixed-size chained hash table. Entries are never removed; the map is
// dropped as a whole together with its font.
package cpmap

// FastPathLimit is the first codepoint not served by the direct array.
const FastPathLimit = 255

// Buckets is the number of hash chains.
const Buckets = 512

// Entry is the per-codepoint glyph record.
type Entry struct {
	// Index is the slot in the font's atlas index buffer.
	Index int

	// Advance is the horizontal and vertical advance in font units.
	Advance [2]float64
}

type node struct {
	key   uint32
	entry Entry
	next  *node
}

// Map is a codepoint to Entry map. The zero value is ready to use.
type Map struct {
	fast    [FastPathLimit]Entry
	present [FastPathLimit]bool
	buckets [Buckets]*node
	n       int
}

// Hash mixes k and reduces it to a bucket index.
func Hash(k uint32) uint32 {
	k = ((k >> 16) ^ k) * 0x45d9f3b
	k = ((k >> 16) ^ k) * 0x45d9f3b
	k = (k >> 16) ^ k
	return k % Buckets
}

// Get returns the entry for cp.
func (m *Map) Get(cp uint32) (*Entry, bool) {
	if cp < FastPathLimit {
		if !m.present[cp] {
			return nil, false
		}
		return &m.fast[cp], true
	}
	for n := m.buckets[Hash(cp)]; n != nil; n = n.next {
		if n.key == cp {
			return &n.entry, true
		}
	}
	return nil, false
}

// Insert returns the entry for cp, creating a zero entry if it is absent.
// New chain nodes are appended at the tail.
func (m *Map) Insert(cp uint32) *Entry {
	if cp < FastPathLimit {
		if !m.present[cp] {
			m.present[cp] = true
			m.n++
		}
		return &m.fast[cp]
	}
	h := Hash(cp)
	var last *node
	for n := m.buckets[h]; n != nil; n = n.next {
		if n.key == cp {
			return &n.entry
		}
		last = n
	}
	n := &node{key: cp}
	if last == nil {
		m.buckets[h] = n
	} else {
		last.next = n
	}
	m.n++
	return &n.entry
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return m.n
}

// Range calls fn for every entry, fast path first, then chains in bucket
// order. Iteration stops when fn returns false.
func (m *Map) Range(fn func(cp uint32, e *Entry) bool) {
	for cp := range m.fast {
		if m.present[cp] && !fn(uint32(cp), &m.fast[cp]) {
			return
		}
	}
	for _, head := range m.buckets {
		for n := head; n != nil; n = n.next {
			if !fn(n.key, &n.entry) {
				return
			}
		}
	}
}

// chainLen returns the length of the chain holding cp.
func (m *Map) chainLen(cp uint32) int {
	c := 0
	for n := m.buckets[Hash(cp)]; n != nil; n = n.next {
		c++
	}
	return c
}
