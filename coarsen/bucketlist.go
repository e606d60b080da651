package coarsen

// bucketList is the doubly-linked lambda bucket list used by both C/F
// splitting phase one and CR's maximal-independent-set search: vertices are
// grouped into buckets keyed by an integer measure, and the algorithm
// repeatedly pulls a vertex out of the highest nonempty bucket.
//
// This is an arena of int-indexed nodes rather than the reference's
// pointer-linked list (section 9, "doubly-linked lambda bucket list for
// coarsening" redesign note): head/tail are indexed by measure, next/prev
// are indexed by vertex, and there is no heap allocation once built.
type bucketList struct {
	head, tail []int // per measure; -1 if bucket empty
	next, prev []int // per vertex; -1 sentinel
	bucket     []int // per vertex; -1 if not currently in any bucket
	maxMeasure int    // highest measure ever used, bounds head/tail length
	top        int    // highest measure currently known to be (possibly) nonempty
}

// newBucketList allocates a bucket list over n vertices with measures in
// [0, maxMeasure].
func newBucketList(n, maxMeasure int) *bucketList {
	l := &bucketList{
		head:       make([]int, maxMeasure+1),
		tail:       make([]int, maxMeasure+1),
		next:       make([]int, n),
		prev:       make([]int, n),
		bucket:     make([]int, n),
		maxMeasure: maxMeasure,
		top:        -1,
	}
	for m := range l.head {
		l.head[m] = -1
		l.tail[m] = -1
	}
	for v := range l.bucket {
		l.bucket[v] = -1
	}
	return l
}

// insert places vertex v at the tail of bucket measure.
func (l *bucketList) insert(v, measure int) {
	if measure > l.maxMeasure {
		measure = l.maxMeasure
	}
	l.bucket[v] = measure
	l.prev[v] = l.tail[measure]
	l.next[v] = -1
	if l.tail[measure] >= 0 {
		l.next[l.tail[measure]] = v
	} else {
		l.head[measure] = v
	}
	l.tail[measure] = v
	if measure > l.top {
		l.top = measure
	}
}

// remove takes vertex v out of whichever bucket it currently sits in. It is
// a no-op if v is not in the list.
func (l *bucketList) remove(v int) {
	measure := l.bucket[v]
	if measure < 0 {
		return
	}
	p, nx := l.prev[v], l.next[v]
	if p >= 0 {
		l.next[p] = nx
	} else {
		l.head[measure] = nx
	}
	if nx >= 0 {
		l.prev[nx] = p
	} else {
		l.tail[measure] = p
	}
	l.bucket[v] = -1
}

// move removes v and reinserts it under newMeasure; a convenience for the
// "bucket-move" step of the splitting algorithm.
func (l *bucketList) move(v, newMeasure int) {
	l.remove(v)
	l.insert(v, newMeasure)
}

// popMax removes and returns a vertex from the highest nonempty bucket, or
// -1 if the list is empty.
func (l *bucketList) popMax() int {
	for l.top >= 0 && l.head[l.top] < 0 {
		l.top--
	}
	if l.top < 0 {
		return -1
	}
	v := l.head[l.top]
	l.remove(v)
	return v
}
