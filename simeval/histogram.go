// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package simeval

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Bin holds the five outcome counters of one score.
type Bin struct {
	MC, MI, MU, UM, UU int64
}

// Total returns the sum of the counters.
func (b Bin) Total() int64 {
	return b.MC + b.MI + b.MU + b.UM + b.UU
}

// Mappable returns the number of reads that should map.
func (b Bin) Mappable() int64 {
	return b.MC + b.MI + b.MU
}

// Unmappable returns the number of reads that should not map.
func (b Bin) Unmappable() int64 {
	return b.UM + b.UU
}

func (b *Bin) add(o Bin) {
	b.MC += o.MC
	b.MI += o.MI
	b.MU += o.MU
	b.UM += o.UM
	b.UU += o.UU
}

// Histogram counts classified reads per score. It covers the closed score
// range [MinScore, MaxScore], which grows in either direction as needed.
// Index i of every counter slice holds score minScore+i.
//
// The zero value is not usable; use NewHistogram.
type Histogram struct {
	minScore, maxScore int
	mc, mi, mu, um, uu []int64
}

// NewHistogram creates a histogram with one empty bin at score 0.
func NewHistogram() *Histogram {
	h := &Histogram{}
	h.Reset()
	return h
}

// Reset drops all counts, leaving one empty bin at score 0.
func (h *Histogram) Reset() {
	h.minScore, h.maxScore = 0, 0
	h.mc = []int64{0}
	h.mi = []int64{0}
	h.mu = []int64{0}
	h.um = []int64{0}
	h.uu = []int64{0}
}

// MinScore returns the lowest score covered.
func (h *Histogram) MinScore() int { return h.minScore }

// MaxScore returns the highest score covered.
func (h *Histogram) MaxScore() int { return h.maxScore }

// Len returns the number of bins, MaxScore()-MinScore()+1.
func (h *Histogram) Len() int { return len(h.mc) }

// Counts returns the counters of the i'th bin, i.e. of score MinScore()+i.
func (h *Histogram) Counts(i int) Bin {
	return Bin{MC: h.mc[i], MI: h.mi[i], MU: h.mu[i], UM: h.um[i], UU: h.uu[i]}
}

// Bin returns the counters of the given score. Scores outside the covered
// range have no counts.
func (h *Histogram) Bin(score int) Bin {
	if score < h.minScore || score > h.maxScore {
		return Bin{}
	}
	return h.Counts(score - h.minScore)
}

// Total returns the counters summed over all bins.
func (h *Histogram) Total() Bin {
	var t Bin
	for i := range h.mc {
		t.add(h.Counts(i))
	}
	return t
}

// extend grows the covered range to [newMin, newMax], which must contain the
// current range. Existing counts keep their scores.
func (h *Histogram) extend(newMin, newMax int) {
	n := newMax - newMin + 1
	shift := h.minScore - newMin
	grow := func(s []int64) []int64 {
		if shift == 0 {
			return append(s, make([]int64, n-len(s))...)
		}
		t := make([]int64, n)
		copy(t[shift:], s)
		return t
	}
	h.mc = grow(h.mc)
	h.mi = grow(h.mi)
	h.mu = grow(h.mu)
	h.um = grow(h.um)
	h.uu = grow(h.uu)
	h.minScore, h.maxScore = newMin, newMax
}

// Add counts one read with the given outcome at score. It returns an error,
// and leaves h unchanged, if actual or predicted is out of range or if an
// unmappable read is claimed to be mapped correctly.
func (h *Histogram) Add(score int, actual Actual, predicted Predicted) error {
	switch actual {
	case Mappable, Unmappable:
	default:
		return errors.E(errors.Invalid, fmt.Sprintf("histogram add: could not understand actual value %v", actual))
	}
	switch predicted {
	case MappedCorrectly, MappedIncorrectly, Unmapped:
	default:
		return errors.E(errors.Invalid, fmt.Sprintf("histogram add: could not understand predicted value %v", predicted))
	}
	if actual == Unmappable && predicted == MappedCorrectly {
		return errors.E(errors.Integrity, fmt.Sprintf("histogram add: score %d: an unmappable read cannot be mapped correctly", score))
	}

	if score > h.maxScore {
		h.extend(h.minScore, score)
	} else if score < h.minScore {
		h.extend(score, h.maxScore)
	}
	i := score - h.minScore
	switch actual {
	case Mappable:
		switch predicted {
		case MappedCorrectly:
			h.mc[i]++
		case MappedIncorrectly:
			h.mi[i]++
		case Unmapped:
			h.mu[i]++
		}
	case Unmappable:
		switch predicted {
		case MappedIncorrectly:
			h.um[i]++
		case Unmapped:
			h.uu[i]++
		}
	}
	return nil
}
