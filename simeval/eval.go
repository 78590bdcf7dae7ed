// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package simeval

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio-simeval/encoding/bamprovider"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// progressInterval is the number of reads between progress messages.
const progressInterval = 10000

// Stats summarizes one evaluation run.
type Stats struct {
	// Reads is the number of reads seen: pairs for paired input, records for
	// single-end input.
	Reads int
	// Scored is the number of records added to the histogram.
	Scored int
	// Undecodable is the number of records whose name carried no truth.
	Undecodable int
	// Filtered is the number of records dropped by the quality threshold or
	// the read filters.
	Filtered int
	// Incorrect is the number of records forwarded as incorrect alignments.
	Incorrect int
}

// Evaluator scores a stream of primary alignment records.
type Evaluator struct {
	opts      Opts
	hist      *Histogram
	incorrect *bamprovider.Writer
	stats     Stats
}

// NewEvaluator creates an Evaluator. If incorrect is non-nil, records mapped
// incorrectly are written to it.
func NewEvaluator(opts Opts, incorrect *bamprovider.Writer) *Evaluator {
	return &Evaluator{opts: opts, hist: NewHistogram(), incorrect: incorrect}
}

// Histogram returns the histogram built so far.
func (e *Evaluator) Histogram() *Histogram { return e.hist }

// Stats returns the counts of the run so far.
func (e *Evaluator) Stats() Stats { return e.stats }

// checkPairing counts r as a read and fails if its paired flag contradicts
// the configured mode.
func (e *Evaluator) checkPairing(r *sam.Record) error {
	if r.Flags&sam.Paired != 0 {
		if e.opts.SingleEnd {
			return errors.E(errors.Invalid, "found a read that was paired end:", r.Name)
		}
		if r.Flags&sam.Read1 == 0 {
			return nil
		}
	} else if !e.opts.SingleEnd {
		return errors.E(errors.Invalid, "found a read that was not paired:", r.Name)
	}
	e.stats.Reads++
	if e.stats.Reads%progressInterval == 0 {
		log.Printf("processed %d reads", e.stats.Reads)
	}
	return nil
}

// Add scores one primary record. Errors are fatal to the run; records
// without truth in their names are logged and skipped.
func (e *Evaluator) Add(r *sam.Record) error {
	if err := e.checkPairing(r); err != nil {
		return err
	}
	if !e.opts.passesQuality(r) {
		e.stats.Filtered++
		return nil
	}
	truth, err := DecodeReadName(r.Name)
	if err != nil {
		log.Error.Printf("%v: read was not generated by dwgsim?", err)
		e.stats.Undecodable++
		return nil
	}
	c, ok := Classify(truth, r, &e.opts)
	if !ok {
		e.stats.Filtered++
		return nil
	}
	if err := e.hist.Add(c.Score, c.Actual, c.Predicted); err != nil {
		return errors.E(err, "read", r.Name)
	}
	e.stats.Scored++
	if c.Predicted == MappedIncorrectly && e.incorrect != nil {
		if err := e.incorrect.Write(r); err != nil {
			return errors.E(err, "write incorrect alignment", r.Name)
		}
		e.stats.Incorrect++
	}
	return nil
}

// CheckReadCount warns if the number of reads seen differs from
// Opts.ExpectedReads.
func (e *Evaluator) CheckReadCount() {
	if e.opts.ExpectedReads > 0 && e.stats.Reads != e.opts.ExpectedReads {
		log.Error.Printf("number of reads found (%d) differs from the number specified (%d)",
			e.stats.Reads, e.opts.ExpectedReads)
	}
}

// WriteReport writes the statistics of the histogram to w in the format
// chosen by Opts.ReportFormat.
func (e *Evaluator) WriteReport(w io.Writer) error {
	rows := ComputeRows(e.hist, e.opts.Divisor)
	if e.opts.ReportFormat == TSVReport {
		return WriteTSV(w, rows)
	}
	return WriteReport(w, rows, e.opts.Metric)
}

// createOutput opens path for writing. "-" is stdout, and paths ending in
// ".gz" are gzip compressed. The returned function flushes and closes the
// output.
func createOutput(ctx context.Context, path string) (io.Writer, func() error, error) {
	if path == "" || path == bamprovider.StdioPath {
		return os.Stdout, func() error { return nil }, nil
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "could not open file for writing:", path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return out.Writer(ctx), func() error { return out.Close(ctx) }, nil
	}
	gz := gzip.NewWriter(out.Writer(ctx))
	return gz, func() error {
		var e errors.Once
		e.Set(gz.Close())
		e.Set(out.Close(ctx))
		return e.Err()
	}, nil
}

// Evaluate scores the primary records of the given SAM/BAM files, read in
// order, and writes the report to opts.OutPath. Only the first record of
// each run of equal read names is scored. Nothing is reported if any error
// occurs.
func Evaluate(ctx context.Context, paths []string, opts Opts) (stats Stats, err error) {
	if err = opts.Validate(); err != nil {
		return
	}
	if len(paths) == 0 {
		err = errors.E(errors.Invalid, "no input files")
		return
	}

	var (
		once           errors.Once
		incorrect      *bamprovider.Writer
		closeIncorrect func() error
	)
	// finishIncorrect flushes and closes the incorrect alignment output, if
	// any. It is safe to call more than once.
	finishIncorrect := func() {
		if incorrect != nil {
			once.Set(incorrect.Close())
			incorrect = nil
		}
		if closeIncorrect != nil {
			once.Set(closeIncorrect())
			closeIncorrect = nil
		}
	}
	defer func() {
		finishIncorrect()
		if err == nil {
			err = once.Err()
		}
	}()

	e := NewEvaluator(opts, nil)
	names := bamprovider.NewNameIterator(nil)
	for i, path := range paths {
		p := bamprovider.NewProvider(path, bamprovider.ProviderOpts{Format: opts.Format})
		if i == 0 && opts.PrintIncorrect {
			var header *sam.Header
			if header, err = p.GetHeader(); err != nil {
				p.Close() // nolint: errcheck
				return
			}
			var w io.Writer
			if w, closeIncorrect, err = createOutput(ctx, opts.IncorrectPath); err != nil {
				p.Close() // nolint: errcheck
				return
			}
			format := bamprovider.ResolveFileType(path, opts.Format)
			if incorrect, err = bamprovider.NewWriter(w, header, format); err != nil {
				p.Close() // nolint: errcheck
				return
			}
			e.incorrect = incorrect
		}
		log.Printf("%s: analyzing", path)
		names.Reset(p.NewIterator())
		for names.Scan() {
			if err = e.Add(names.Record()); err != nil {
				break
			}
		}
		once.Set(err)
		once.Set(names.Close())
		once.Set(p.Close())
		if err = once.Err(); err != nil {
			return
		}
	}
	finishIncorrect()
	if err = once.Err(); err != nil {
		return
	}
	stats = e.Stats()
	log.Printf("%d reads, %d scored, %d filtered, %d without truth, %d duplicate records skipped",
		stats.Reads, stats.Scored, stats.Filtered, stats.Undecodable, names.Skipped())
	e.CheckReadCount()

	w, closeOut, err := createOutput(ctx, opts.OutPath)
	if err != nil {
		return
	}
	once.Set(e.WriteReport(w))
	once.Set(closeOut())
	err = once.Err()
	return
}
