package index

// Item pairs an occupied table slot with its absolute expiry time in unix nanoseconds.
type Item struct {
	Slot      int
	ExpiresAt int64
}

// Index is a binary min-heap of Items ordered by ExpiresAt. Its backing array is allocated
// once at construction and never grows; Slot values are plain indices into the address
// table, never references to the entries themselves.
type Index struct {
	items []Item
}
