package bamprovider

import (
	"github.com/grailbio/hts/sam"
)

// NameIterator yields the first record of each run of consecutive records
// that share a read name. Aligners emit the primary alignment of a read
// before its secondary and supplementary ones, so for name-grouped input this
// is the primary record of every read.
//
// The last name seen survives Reset, so a run that continues into the next
// input file is still suppressed.
type NameIterator struct {
	it      Iterator
	rec     *sam.Record
	prev    string
	hasPrev bool
	skipped int
}

// NewNameIterator creates a NameIterator reading from it. it may be nil, in
// which case Reset must be called before Scan.
func NewNameIterator(it Iterator) *NameIterator {
	return &NameIterator{it: it}
}

// Reset makes n read from it. The caller remains responsible for closing the
// previous iterator.
func (n *NameIterator) Reset(it Iterator) {
	n.it = it
	n.rec = nil
}

// Scan advances to the next record whose name differs from the previous
// one.
func (n *NameIterator) Scan() bool {
	for n.it.Scan() {
		r := n.it.Record()
		if n.hasPrev && r.Name == n.prev {
			n.skipped++
			continue
		}
		n.prev, n.hasPrev = r.Name, true
		n.rec = r
		return true
	}
	return false
}

// Record returns the current record.
func (n *NameIterator) Record() *sam.Record { return n.rec }

// Err returns the error of the underlying iterator.
func (n *NameIterator) Err() error { return n.it.Err() }

// Close closes the underlying iterator.
func (n *NameIterator) Close() error { return n.it.Close() }

// Skipped returns the number of records dropped so far because they repeated
// the previous name.
func (n *NameIterator) Skipped() int { return n.skipped }
