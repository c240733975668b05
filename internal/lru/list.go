package lru

// none marks the absence of a neighbour, head or tail.
const none int32 = -1

// slot is one arena cell. A live slot is linked into the recency chain;
// a free slot is linked into the free list through next.
type slot[K comparable, V any] struct {
	key   K
	value V
	prev  int32
	next  int32
}

// recencyList is a doubly-linked list of entries stored in a growable arena.
//
// Entries are addressed by their slot index, which stays fixed for as long as
// the entry is live: moving an entry only relinks prev/next. Front (head) is
// the most recently used entry, back (tail) the next one to be evicted.
type recencyList[K comparable, V any] struct {
	slots []slot[K, V]
	head  int32
	tail  int32
	free  int32
	size  int
}

func newRecencyList[K comparable, V any](hint int) *recencyList[K, V] {
	if hint > 1024 {
		hint = 1024
	}
	return &recencyList[K, V]{
		slots: make([]slot[K, V], 0, hint),
		head:  none,
		tail:  none,
		free:  none,
	}
}

func (l *recencyList[K, V]) len() int { return l.size }

// pushFront stores key/value in a fresh or recycled slot at the front and
// returns its index.
func (l *recencyList[K, V]) pushFront(key K, value V) int32 {
	var i int32
	if l.free != none {
		i = l.free
		l.free = l.slots[i].next
	} else {
		l.slots = append(l.slots, slot[K, V]{})
		i = int32(len(l.slots) - 1)
	}

	s := &l.slots[i]
	s.key = key
	s.value = value
	s.prev = none
	s.next = l.head

	if l.head != none {
		l.slots[l.head].prev = i
	} else {
		l.tail = i
	}
	l.head = i
	l.size++
	return i
}

// unlink detaches slot i from the chain without freeing it.
func (l *recencyList[K, V]) unlink(i int32) {
	s := &l.slots[i]
	if s.prev != none {
		l.slots[s.prev].next = s.next
	} else {
		l.head = s.next
	}
	if s.next != none {
		l.slots[s.next].prev = s.prev
	} else {
		l.tail = s.prev
	}
	s.prev, s.next = none, none
}

func (l *recencyList[K, V]) moveToFront(i int32) {
	if l.head == i {
		return
	}
	l.unlink(i)
	s := &l.slots[i]
	s.next = l.head
	l.slots[l.head].prev = i
	l.head = i
}

// remove unlinks slot i, clears it so the arena no longer references the key
// or value, and puts it on the free list.
func (l *recencyList[K, V]) remove(i int32) {
	l.unlink(i)
	l.slots[i] = slot[K, V]{prev: none, next: l.free}
	l.free = i
	l.size--
}

func (l *recencyList[K, V]) back() int32 { return l.tail }

func (l *recencyList[K, V]) at(i int32) *slot[K, V] { return &l.slots[i] }

func (l *recencyList[K, V]) reset() {
	clear(l.slots)
	l.slots = l.slots[:0]
	l.head, l.tail, l.free = none, none, none
	l.size = 0
}
