package binarize

// Entry is one key/value pair of a Mapping
type Entry struct {
	Key   String
	Value Value
}

// Mapping is an insertion-ordered map with String keys. The zero value is an
// empty mapping ready to use.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// NewMapping returns an empty Mapping
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Set stores v under key. Setting an existing key replaces its value and
// keeps the key at its original position.
func (m *Mapping) Set(key String, v Value) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	k := indexKey(key)
	if i, ok := m.index[k]; ok {
		m.entries[i].Value = v
		return
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: append(String(nil), key...), Value: v})
}

// SetString is Set with a Go string key
func (m *Mapping) SetString(key string, v Value) {
	m.Set(NewString(key), v)
}

// Get returns the value stored under key
func (m *Mapping) Get(key String) (Value, bool) {
	i, ok := m.index[indexKey(key)]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// GetString is Get with a Go string key
func (m *Mapping) GetString(key string) (Value, bool) {
	return m.Get(NewString(key))
}

// Len returns the number of pairs
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the pairs in insertion order. The slice must not be
// modified.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	return m.entries
}

// indexKey turns code units into a comparable map key without losing lone
// surrogates
func indexKey(s String) string {
	b := make([]byte, 2*len(s))
	for i, u := range s {
		b[2*i] = byte(u >> 8)
		b[2*i+1] = byte(u)
	}
	return string(b)
}
