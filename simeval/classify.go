// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package simeval

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// Actual is the truth about a read: whether it should map at all.
type Actual int

const (
	Mappable Actual = iota
	Unmappable
)

func (a Actual) String() string {
	switch a {
	case Mappable:
		return "mappable"
	case Unmappable:
		return "unmappable"
	}
	return fmt.Sprintf("Actual(%d)", int(a))
}

// Predicted is what the aligner did with a read.
type Predicted int

const (
	MappedCorrectly Predicted = iota
	MappedIncorrectly
	Unmapped
)

func (p Predicted) String() string {
	switch p {
	case MappedCorrectly:
		return "mapped correctly"
	case MappedIncorrectly:
		return "mapped incorrectly"
	case Unmapped:
		return "unmapped"
	}
	return fmt.Sprintf("Predicted(%d)", int(p))
}

// Classification is the outcome of comparing one alignment to its truth.
type Classification struct {
	Score     int
	Actual    Actual
	Predicted Predicted
}

var asTag = []byte("AS")

// passesQuality reports whether r clears the mapping quality threshold.
func (o *Opts) passesQuality(r *sam.Record) bool {
	return int(r.MapQ) >= o.MinQuality
}

// score computes the binned metric of r.
func (o *Opts) score(r *sam.Record) int {
	if o.Metric == QualityMetric {
		s := int(r.MapQ) / o.Divisor
		if s > MaxQuality {
			s = MaxQuality
		}
		return s
	}
	aux, ok := r.Tag(asTag)
	if !ok {
		return MinAlignmentScore
	}
	s := auxInt(aux) / o.Divisor
	if s < MinAlignmentScore {
		s = MinAlignmentScore
	}
	return s
}

// auxInt returns the integer value of an aux field. Non-integer fields read
// as zero.
func auxInt(aux sam.Aux) int {
	switch v := aux.Value().(type) {
	case int8:
		return int(v)
	case uint8:
		return int(v)
	case int16:
		return int(v)
	case uint16:
		return int(v)
	case int32:
		return int(v)
	case uint32:
		return int(v)
	case int:
		return v
	}
	return 0
}

// keep applies the read filters. The filters look at mate 1 regardless of
// which mate r is.
func (o *Opts) keep(t ReadTruth) bool {
	switch {
	case o.IndelsOnly:
		return t.Indels[0] != 0
	case o.ExactErrors >= 0:
		return t.Errors[0] == o.ExactErrors
	case o.ExactSubs >= 0:
		return t.Subs[0] == o.ExactSubs
	}
	return true
}

// Classify compares alignment r against the truth decoded from its name. It
// returns false if r is dropped by the quality threshold or the read
// filters.
func Classify(t ReadTruth, r *sam.Record, opts *Opts) (Classification, bool) {
	if !opts.passesQuality(r) {
		return Classification{}, false
	}
	c := Classification{Score: opts.score(r)}
	if opts.swapMateCounts() {
		t = t.SwapMateCounts()
	}
	if !opts.keep(t) {
		return Classification{}, false
	}

	m := mate(opts.SingleEnd, r.Flags&sam.Read1 != 0)
	if t.Random[m] {
		c.Actual = Unmappable
	} else {
		c.Actual = Mappable
	}

	switch {
	case r.Flags&sam.Unmapped != 0:
		c.Predicted = Unmapped
	case c.Actual == Unmappable,
		r.Ref.Name() != t.Chrom,
		abs(t.Pos[m]-r.Pos) > opts.Wiggle:
		c.Predicted = MappedIncorrectly
	default:
		c.Predicted = MappedCorrectly
	}
	return c, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
