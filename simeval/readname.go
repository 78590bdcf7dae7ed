// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package simeval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// nameSeparators lists, from the end of a dwgsim read name backwards, the
// punctuation that separates the truth fields:
//
//   chr_pos1_pos2_str1_str2_rand1_rand2_err1:sub1:indel1_err2:sub2:indel2_num
//
// Scanning stops after the last of these, so underscores inside the
// chromosome name are preserved.
const nameSeparators = "_::_::_______"

// nameFields is the number of whitespace separated fields left after the
// separators are normalized.
const nameFields = 14

// ReadTruth is the origin of a simulated read pair, as recorded in its name.
// Index 0 of each array refers to mate 1, index 1 to mate 2.
type ReadTruth struct {
	Chrom string
	// Pos is the simulated position of each mate, as written by the
	// simulator.
	Pos [2]int
	// Strand is 0 for forward and 1 for reverse.
	Strand [2]int
	// Random is true if the mate is random sequence and should not map.
	Random [2]bool
	Errors [2]int
	Subs   [2]int
	Indels [2]int
	// ReadNum is the trailing read number token, kept verbatim.
	ReadNum string
}

// DecodeError describes a name that does not follow the simulator's naming
// convention. DecodeReadName returns it wrapped in an errors.Invalid error.
type DecodeError struct {
	Name   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode read name %q: %s", e.Name, e.Reason)
}

func invalidName(name, reason string) error {
	return errors.E(errors.Invalid, &DecodeError{name, reason})
}

// normalizeName replaces the truth separators of name with spaces. The
// result has the same length as name.
func normalizeName(name string) string {
	b := []byte(name)
	j := 0
	for i := len(b) - 1; i >= 0 && j < len(nameSeparators); i-- {
		if b[i] == nameSeparators[j] {
			b[i] = ' '
			j++
		}
	}
	return string(b)
}

// DecodeReadName parses the truth fields embedded in a dwgsim read name.
func DecodeReadName(name string) (ReadTruth, error) {
	var t ReadTruth
	fields := strings.Fields(normalizeName(name))
	if len(fields) != nameFields {
		return t, invalidName(name, fmt.Sprintf("found %d fields, expected %d", len(fields), nameFields))
	}
	var err error
	parseInt := func(i int, label string) int {
		if err != nil {
			return 0
		}
		v, e := strconv.Atoi(fields[i])
		if e != nil {
			err = invalidName(name, fmt.Sprintf("%s: %q is not an integer", label, fields[i]))
		}
		return v
	}
	parseDigit := func(i int, label string) int {
		if err != nil {
			return 0
		}
		if f := fields[i]; len(f) != 1 || f[0] < '0' || f[0] > '9' {
			err = invalidName(name, fmt.Sprintf("%s: %q is not a single digit", label, f))
			return 0
		}
		return int(fields[i][0] - '0')
	}
	parseFlag := func(i int, label string) bool {
		v := parseDigit(i, label)
		if err == nil && v > 1 {
			err = invalidName(name, fmt.Sprintf("%s: %q is not 0 or 1", label, fields[i]))
		}
		return v == 1
	}

	t.Chrom = fields[0]
	t.Pos[0] = parseInt(1, "pos1")
	t.Pos[1] = parseInt(2, "pos2")
	t.Strand[0] = parseDigit(3, "strand1")
	t.Strand[1] = parseDigit(4, "strand2")
	t.Random[0] = parseFlag(5, "random1")
	t.Random[1] = parseFlag(6, "random2")
	t.Errors[0] = parseInt(7, "errors1")
	t.Subs[0] = parseInt(8, "subs1")
	t.Indels[0] = parseInt(9, "indels1")
	t.Errors[1] = parseInt(10, "errors2")
	t.Subs[1] = parseInt(11, "subs2")
	t.Indels[1] = parseInt(12, "indels2")
	t.ReadNum = fields[13]
	if err != nil {
		return ReadTruth{}, err
	}
	return t, nil
}

// Name formats t the way the simulator names reads. DecodeReadName(t.Name())
// returns t.
func (t ReadTruth) Name() string {
	b := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	return fmt.Sprintf("%s_%d_%d_%d_%d_%d_%d_%d:%d:%d_%d:%d:%d_%s",
		t.Chrom, t.Pos[0], t.Pos[1], t.Strand[0], t.Strand[1],
		b(t.Random[0]), b(t.Random[1]),
		t.Errors[0], t.Subs[0], t.Indels[0],
		t.Errors[1], t.Subs[1], t.Indels[1],
		t.ReadNum)
}

// SwapMateCounts returns a copy of t with the error, substitution and indel
// counts of the two mates exchanged. Positions, strands and random flags are
// unchanged.
//
// BWA reports colour-space mates in the opposite order from the one dwgsim
// uses for the counts.
func (t ReadTruth) SwapMateCounts() ReadTruth {
	t.Errors[0], t.Errors[1] = t.Errors[1], t.Errors[0]
	t.Subs[0], t.Subs[1] = t.Subs[1], t.Subs[0]
	t.Indels[0], t.Indels[1] = t.Indels[1], t.Indels[0]
	return t
}

// mate returns the index of the mate described by a record: 0 for mate 1
// (or single-end reads), 1 for mate 2.
func mate(singleEnd, read1 bool) int {
	if singleEnd || read1 {
		return 0
	}
	return 1
}

func (t ReadTruth) String() string {
	return fmt.Sprintf("chrom=%s pos=%d,%d strand=%d,%d random=%v,%v errors=%d,%d subs=%d,%d indels=%d,%d read=%s",
		t.Chrom, t.Pos[0], t.Pos[1], t.Strand[0], t.Strand[1],
		t.Random[0], t.Random[1], t.Errors[0], t.Errors[1],
		t.Subs[0], t.Subs[1], t.Indels[0], t.Indels[1], t.ReadNum)
}
