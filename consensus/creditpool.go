package consensus

// CreditPoolSnapshot is the immutable per-block view of the credit pool
// (§3, §4.C): pure data, no operations beyond access. A snapshot is shared
// by reference from its cache entry; nothing ever mutates a published
// snapshot in place (§9 "Shared ownership of snapshots").
type CreditPoolSnapshot struct {
	Locked         uint64
	CurrentLimit   uint64
	LatelyUnlocked uint64
	Indexes        *SkipSet

	// window holds the last min(height+1, CreditPoolWindow) blocks' unlock
	// frames, oldest-first. It is not part of the public per-block contract
	// (§4.C lists only the four fields above); it exists so applyFrame can
	// expire a block's contribution to LatelyUnlocked and Indexes exactly W
	// blocks after it was committed (§4.D step 4, §4.G
	// "EXPIRED-FROM-WINDOW"), the same way whether the snapshot was reached
	// by promoting a CreditPoolDiff one block at a time or by replaying a
	// whole ancestor walk from scratch (§8 equivalence).
	window []blockFrame
}

// snapshotCacheNode is one entry of the intrusive doubly-linked LRU list.
type snapshotCacheNode struct {
	hash     [32]byte
	snapshot *CreditPoolSnapshot
	prev     *snapshotCacheNode
	next     *snapshotCacheNode
}

// SnapshotCache is the capacity-1000 LRU memoization table keyed by block
// hash (§4.D, §5 "Shared resources"). It is a small intrusive
// doubly-linked-list + map LRU, in-memory, grounded in the same
// get-or-miss bucket-wrapper shape as the persistent store but with no
// disk-backing: the cache is explicitly volatile (§6.3).
type SnapshotCache struct {
	capacity int
	entries  map[[32]byte]*snapshotCacheNode
	head     *snapshotCacheNode // most recently used
	tail     *snapshotCacheNode // least recently used
}

// NewSnapshotCache creates an empty cache with the given capacity.
func NewSnapshotCache(capacity int) *SnapshotCache {
	return &SnapshotCache{capacity: capacity, entries: make(map[[32]byte]*snapshotCacheNode)}
}

// Get returns the cached snapshot for hash, if present, promoting it to
// most-recently-used.
func (c *SnapshotCache) Get(hash [32]byte) (*CreditPoolSnapshot, bool) {
	node, ok := c.entries[hash]
	if !ok {
		return nil, false
	}
	c.moveToFront(node)
	return node.snapshot, true
}

// Put inserts or replaces the cached snapshot for hash, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *SnapshotCache) Put(hash [32]byte, snapshot *CreditPoolSnapshot) {
	if node, ok := c.entries[hash]; ok {
		node.snapshot = snapshot
		c.moveToFront(node)
		return
	}
	node := &snapshotCacheNode{hash: hash, snapshot: snapshot}
	c.entries[hash] = node
	c.pushFront(node)
	if len(c.entries) > c.capacity {
		c.evictTail()
	}
}

// Len reports the number of cached entries.
func (c *SnapshotCache) Len() int { return len(c.entries) }

func (c *SnapshotCache) pushFront(node *snapshotCacheNode) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *SnapshotCache) unlink(node *snapshotCacheNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.prev, node.next = nil, nil
}

func (c *SnapshotCache) moveToFront(node *snapshotCacheNode) {
	if c.head == node {
		return
	}
	c.unlink(node)
	c.pushFront(node)
}

func (c *SnapshotCache) evictTail() {
	if c.tail == nil {
		return
	}
	victim := c.tail
	c.unlink(victim)
	delete(c.entries, victim.hash)
}
