package types

// Params is an ordered string-keyed parameter map.
//
// Iteration order is first-insertion order, so records round-trip through
// the writer with a stable settings line and tests can compare output
// byte-for-byte.
type Params struct {
	keys []string
	vals map[string]string
}

// NewParams returns an empty parameter map.
func NewParams() *Params {
	return &Params{vals: make(map[string]string)}
}

// Set stores a value. A key keeps its original position when set again.
func (p *Params) Set(key, value string) {
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

// Get returns the value for key and whether it was present.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (p *Params) Keys() []string {
	return p.keys
}

// Len returns the number of stored parameters.
func (p *Params) Len() int {
	return len(p.keys)
}

// Clone returns an independent copy preserving order.
func (p *Params) Clone() *Params {
	c := NewParams()
	for _, k := range p.keys {
		c.Set(k, p.vals[k])
	}
	return c
}
