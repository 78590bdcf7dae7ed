// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package simeval

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/grailbio/base/tsv"
)

// Row holds the statistics of one score threshold.
type Row struct {
	// Threshold is the score of the bin, multiplied back by the divisor.
	Threshold int
	// At counts the reads in this bin only.
	At Bin
	// GE counts the reads in this bin and all higher ones.
	GE Bin

	// SensitivityAt is mc/(mc+mi+mu) of this bin.
	SensitivityAt float64
	// PPVAt is mc/(mc+mi) of this bin.
	PPVAt float64
	// FDRAt is um/(um+uu) of this bin.
	FDRAt float64
	// SensitivityGE is the cumulative mc over all mappable reads of the run.
	SensitivityGE float64
	// PPVGE is the cumulative mc over the cumulative mapped mappable reads.
	PPVGE float64
	// FDRGE is the cumulative um over all unmappable reads of the run.
	FDRGE float64
}

func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// ComputeRows derives the per-threshold statistics of h, from the highest
// score to the lowest. Each bin yields one row, including empty ones.
//
// The "GE" sensitivity and FDR are relative to the whole run, so they show
// what is lost by treating every read below the threshold as unmapped. The
// "GE" PPV is relative to the reads kept at the threshold.
func ComputeRows(h *Histogram, divisor int) []Row {
	total := h.Total()
	mTotal := total.Mappable()
	uTotal := total.Unmappable()

	rows := make([]Row, 0, h.Len())
	var ge Bin
	for i := h.Len() - 1; i >= 0; i-- {
		at := h.Counts(i)
		ge.add(at)
		rows = append(rows, Row{
			Threshold:     (i + h.MinScore()) * divisor,
			At:            at,
			GE:            ge,
			SensitivityAt: ratio(at.MC, at.Mappable()),
			PPVAt:         ratio(at.MC, at.MC+at.MI),
			FDRAt:         ratio(at.UM, at.Unmappable()),
			SensitivityGE: ratio(ge.MC, mTotal),
			PPVGE:         ratio(ge.MC, ge.MC+ge.MI),
			FDRGE:         ratio(ge.UM, uTotal),
		})
	}
	return rows
}

// reportHeader returns the lines documenting the columns of the text report.
func reportHeader(metric MetricMode) []string {
	return []string{
		fmt.Sprintf("thr | the minimum %s threshold", metric),
		"mc | the number of reads that should be mapped and are mapped correctly at the threshold",
		"mi | the number of reads that should be mapped and are mapped incorrectly at the threshold",
		"mu | the number of reads that should be mapped and are unmapped at the threshold",
		"um | the number of reads that should be unmapped and are mapped at the threshold",
		"uu | the number of reads that should be unmapped and are unmapped at the threshold",
		"mc + mi + mu + um + uu | the total number of reads at the threshold",
		"mc' | the number of reads that should be mapped and are mapped correctly at or above the threshold",
		"mi' | the number of reads that should be mapped and are mapped incorrectly at or above the threshold",
		"mu' | the number of reads that should be mapped and are unmapped at or above the threshold",
		"um' | the number of reads that should be unmapped and are mapped at or above the threshold",
		"uu' | the number of reads that should be unmapped and are unmapped at or above the threshold",
		"mc' + mi' + mu' + um' + uu' | the total number of reads at or above the threshold",
		"(mc / (mc + mi + mu)) | sensitivity: the fraction of reads that should be mapped that are mapped correctly at the threshold",
		"(mc / (mc + mi)) | positive predictive value: the fraction of mapped reads that are mapped correctly at the threshold",
		"(um / (um + uu)) | false discovery rate: the fraction of random reads that are mapped at the threshold",
		"(mc' / total mappable) | sensitivity: the fraction of reads that should be mapped that are mapped correctly at or above the threshold",
		"(mc' / (mc' + mi')) | positive predictive value: the fraction of mapped reads that are mapped correctly at or above the threshold",
		"(um' / total unmappable) | false discovery rate: the fraction of random reads that are mapped at or above the threshold",
	}
}

// countWidth returns the number of decimal digits of total, and at least 1.
func countWidth(total int64) int {
	if total <= 0 {
		return 1
	}
	return 1 + int(math.Floor(math.Log10(float64(total))))
}

// WriteReport writes rows as a space separated table, preceded by lines
// starting with "#" that describe the columns. Counts are right aligned to
// the width of the grand total.
func WriteReport(w io.Writer, rows []Row, metric MetricMode) error {
	var grand int64
	if len(rows) > 0 {
		grand = rows[len(rows)-1].GE.Total()
	}
	width := countWidth(grand)

	bw := bufio.NewWriter(w)
	for _, line := range reportHeader(metric) {
		bw.WriteString("# ")
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	for _, r := range rows {
		fmt.Fprintf(bw, "%.2d", r.Threshold)
		for _, b := range [...]Bin{r.At, r.GE} {
			fmt.Fprintf(bw, " %*d %*d %*d %*d %*d %*d",
				width, b.MC, width, b.MI, width, b.MU, width, b.UM, width, b.UU, width, b.Total())
		}
		fmt.Fprintf(bw, " %.3e %.3e %.3e %.3e %.3e %.3e\n",
			r.SensitivityAt, r.PPVAt, r.FDRAt, r.SensitivityGE, r.PPVGE, r.FDRGE)
	}
	return bw.Flush()
}

var tsvColumns = []string{
	"thr",
	"mc", "mi", "mu", "um", "uu", "total",
	"mc_ge", "mi_ge", "mu_ge", "um_ge", "uu_ge", "total_ge",
	"sensitivity", "ppv", "fdr",
	"sensitivity_ge", "ppv_ge", "fdr_ge",
}

// WriteTSV writes rows as a TSV file with a header line.
func WriteTSV(w io.Writer, rows []Row) error {
	out := tsv.NewWriter(w)
	for _, c := range tsvColumns {
		out.WriteString(c)
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	writeFloat := func(v float64) { out.WriteFloat64(v, 'e', 3) }
	for _, r := range rows {
		out.WriteInt64(int64(r.Threshold))
		for _, b := range [...]Bin{r.At, r.GE} {
			out.WriteInt64(b.MC)
			out.WriteInt64(b.MI)
			out.WriteInt64(b.MU)
			out.WriteInt64(b.UM)
			out.WriteInt64(b.UU)
			out.WriteInt64(b.Total())
		}
		writeFloat(r.SensitivityAt)
		writeFloat(r.PPVAt)
		writeFloat(r.FDRAt)
		writeFloat(r.SensitivityGE)
		writeFloat(r.PPVGE)
		writeFloat(r.FDRGE)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
