package lru

// node is an element of the recency list. The list is circular around a
// sentinel, so linking and unlinking never special-cases the ends.
type node[K comparable, V any] struct {
	prev, next *node[K, V]
	key        K
	v          V
}

// recencyList keeps nodes ordered from least (front) to most (back)
// recently used.
type recencyList[K comparable, V any] struct {
	root   node[K, V]
	length int
}

func (l *recencyList[K, V]) init() {
	l.root.prev = &l.root
	l.root.next = &l.root
	l.length = 0
}

func (l *recencyList[K, V]) front() *node[K, V] {
	if l.length == 0 {
		return nil
	}
	return l.root.next
}

func (l *recencyList[K, V]) pushBack(n *node[K, V]) {
	l.link(n, l.root.prev)
	l.length++
}

func (l *recencyList[K, V]) moveToBack(n *node[K, V]) {
	if l.root.prev == n {
		return
	}
	l.unlink(n)
	l.link(n, l.root.prev)
}

// link inserts n after at.
func (l *recencyList[K, V]) link(n, at *node[K, V]) {
	n.prev = at
	n.next = at.next
	at.next.prev = n
	at.next = n
}

func (l *recencyList[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
}
