package container

// TextChunks is the ordered string-keyed text-chunk mapping. Order is
// stream order, first occurrence wins on duplicate keys: the classifier
// cascade depends on deterministic lookups.
type TextChunks struct {
	keys []string
	vals map[string]string
}

// NewTextChunks returns an empty mapping.
func NewTextChunks() *TextChunks {
	return &TextChunks{vals: make(map[string]string)}
}

// Add appends a chunk. Duplicate keys keep the first value.
func (t *TextChunks) Add(key, value string) {
	if _, ok := t.vals[key]; ok {
		return
	}
	t.keys = append(t.keys, key)
	t.vals[key] = value
}

// Get returns the value for key and whether it was present.
func (t *TextChunks) Get(key string) (string, bool) {
	v, ok := t.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (t *TextChunks) Has(key string) bool {
	_, ok := t.vals[key]
	return ok
}

// Keys returns the keys in stream order. The slice must not be modified.
func (t *TextChunks) Keys() []string {
	return t.keys
}

// Len returns the number of chunks.
func (t *TextChunks) Len() int {
	return len(t.keys)
}
