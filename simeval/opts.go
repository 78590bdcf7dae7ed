// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package simeval

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bio-simeval/encoding/bamprovider"
)

// MetricMode selects the value by which alignments are binned.
type MetricMode int

const (
	// QualityMetric bins alignments by mapping quality.
	QualityMetric MetricMode = iota
	// AlignmentScoreMetric bins alignments by the AS aux tag.
	AlignmentScoreMetric
)

func (m MetricMode) String() string {
	switch m {
	case QualityMetric:
		return "mapping quality"
	case AlignmentScoreMetric:
		return "alignment score"
	}
	return fmt.Sprintf("MetricMode(%d)", int(m))
}

const (
	// MaxQuality caps scores in QualityMetric mode.
	MaxQuality = 255
	// MinAlignmentScore is the floor of scores in AlignmentScoreMetric mode,
	// and the score of alignments without an AS tag.
	MinAlignmentScore = -2500
)

// Report formats accepted by Opts.ReportFormat.
const (
	TextReport = "text"
	TSVReport  = "tsv"
)

// Opts controls Classify and Evaluate.
type Opts struct {
	// MinQuality drops alignments whose mapping quality is below it.
	MinQuality int
	// Divisor scales the metric down before binning. Must be >= 1.
	Divisor int
	Metric  MetricMode
	// SingleEnd declares the input unpaired. Every record is then scored
	// against mate 1, and paired records are an error.
	SingleEnd bool
	// Colorspace and BWA together swap the mate count fields of the truth.
	Colorspace bool
	BWA        bool
	// Wiggle is the largest distance between the simulated and the aligned
	// position that still counts as correct.
	Wiggle int

	// IndelsOnly keeps only reads whose mate 1 carries an indel.
	IndelsOnly bool
	// ExactErrors, if >= 0, keeps only reads with that many mate 1 errors.
	ExactErrors int
	// ExactSubs, if >= 0, keeps only reads with that many mate 1
	// substitutions.
	ExactSubs int

	// ExpectedReads, if > 0, is compared against the number of reads (pairs
	// for paired input) seen.
	ExpectedReads int

	// PrintIncorrect forwards incorrectly mapped records to IncorrectPath.
	PrintIncorrect bool
	IncorrectPath  string

	// Format overrides input format detection.
	Format bamprovider.FileType
	// OutPath receives the report. "-" is stdout.
	OutPath      string
	ReportFormat string
}

// DefaultOpts are the defaults of the bio-simeval command.
var DefaultOpts = Opts{
	Divisor:       1,
	Wiggle:        5,
	ExactErrors:   -1,
	ExactSubs:     -1,
	IncorrectPath: "-",
	OutPath:       "-",
	ReportFormat:  TextReport,
}

// Validate checks that o can be used.
func (o *Opts) Validate() error {
	if o.Divisor < 1 {
		return errors.E(errors.Invalid, fmt.Sprintf("divisor must be >= 1, got %d", o.Divisor))
	}
	if o.Wiggle < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("wiggle must be >= 0, got %d", o.Wiggle))
	}
	switch o.Metric {
	case QualityMetric, AlignmentScoreMetric:
	default:
		return errors.E(errors.Invalid, "unknown metric mode", o.Metric.String())
	}
	switch o.ReportFormat {
	case TextReport, TSVReport:
	default:
		return errors.E(errors.Invalid, "unknown report format", o.ReportFormat)
	}
	return nil
}

// swapMateCounts reports whether the mate count fields must be exchanged.
func (o *Opts) swapMateCounts() bool {
	return o.Colorspace && o.BWA
}
