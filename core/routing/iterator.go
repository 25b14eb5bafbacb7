package routing

// Iterator is a single-pass, forward-only cursor over the copies of one shard.
// It is finite (bounded by the number of copies) and cannot be restarted.
//
// Exhaustion is not an error: NextOrNil returns nil once every copy has been
// handed out and keeps returning nil afterwards. Callers treat that as their
// own retry-exhausted condition.
//
// An Iterator is owned by a single consumer and is not safe for concurrent
// use. Build one iterator per request; any number of iterators may share the
// same ShardGroup concurrently.
type Iterator interface {
	// ShardID is the shard whose copies are iterated.
	ShardID() ShardID
	// Size is the total number of copies, constant for the iterator's lifetime.
	Size() int
	// Remaining is the number of copies not yet returned by NextOrNil.
	Remaining() int
	// FirstOrNil returns the copy NextOrNil would return, without advancing.
	FirstOrNil() *Entry
	// NextOrNil returns the current copy and advances by one.
	NextOrNil() *Entry
}

// ShardIterator walks a shared entry list rotated to start at a seed-derived
// offset. It never copies the list it wraps.
type ShardIterator struct {
	shardID ShardID
	entries []*Entry
	offset  int
	pos     int
}

// NewShardIterator returns an iterator over entries starting at seed modulo
// len(entries). Negative seeds are mapped into [0, len(entries)) as well, so
// seeds k and k+len(entries) always produce the same sequence.
func NewShardIterator(shardID ShardID, entries []*Entry, seed int) *ShardIterator {
	return &ShardIterator{
		shardID: shardID,
		entries: entries,
		offset:  rotationOffset(seed, len(entries)),
	}
}

func newCountedIterator(shardID ShardID, entries []*Entry, counter uint64) *ShardIterator {
	offset := 0
	if n := len(entries); n > 0 {
		offset = int(counter % uint64(n))
	}
	return &ShardIterator{shardID: shardID, entries: entries, offset: offset}
}

// rotationOffset is a non-negative modulo.
func rotationOffset(seed, size int) int {
	if size <= 0 {
		return 0
	}
	off := seed % size
	if off < 0 {
		off += size
	}
	return off
}

func (it *ShardIterator) ShardID() ShardID { return it.shardID }

func (it *ShardIterator) Size() int { return len(it.entries) }

func (it *ShardIterator) Remaining() int { return len(it.entries) - it.pos }

func (it *ShardIterator) FirstOrNil() *Entry {
	if it.pos >= len(it.entries) {
		return nil
	}
	return it.entries[(it.offset+it.pos)%len(it.entries)]
}

func (it *ShardIterator) NextOrNil() *Entry {
	e := it.FirstOrNil()
	if e != nil {
		it.pos++
	}
	return e
}

var _ Iterator = (*ShardIterator)(nil)
