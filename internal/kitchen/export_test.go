package kitchen

// SeenCount is the number of event ids the board still remembers.
func (b *Board) SeenCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, ids := range b.seen {
		n += len(ids)
	}
	return n
}
