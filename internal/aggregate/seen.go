package aggregate

// MemorySeen is the default seen-set: a plain map, discarded at process end.
type MemorySeen struct {
	ids map[string]struct{}
}

func NewMemorySeen() *MemorySeen {
	return &MemorySeen{ids: make(map[string]struct{})}
}

func (m *MemorySeen) Contains(id string) (bool, error) {
	_, ok := m.ids[id]
	return ok, nil
}

func (m *MemorySeen) Add(id string) error {
	m.ids[id] = struct{}{}
	return nil
}

func (m *MemorySeen) Len() uint64 { return uint64(len(m.ids)) }

func (m *MemorySeen) Close() error { return nil }
