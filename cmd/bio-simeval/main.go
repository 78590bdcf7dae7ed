// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio-simeval/encoding/bamprovider"
	"github.com/grailbio/bio-simeval/simeval"
	"v.io/x/lib/cmdline"
)

func newCmdEval() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "eval",
		Short:    "Evaluate alignments of dwgsim reads",
		ArgsName: "path...",
		ArgsLong: "<path> is a SAM (possibly compressed) or BAM file. Files are read in order.",
	}
	opts := simeval.DefaultOpts
	var (
		alignmentScore bool
		format         string
	)
	cmd.Flags.BoolVar(&alignmentScore, "a", false, "split alignments by alignment score instead of mapping quality")
	cmd.Flags.BoolVar(&opts.BWA, "b", opts.BWA, "alignments are from BWA")
	cmd.Flags.BoolVar(&opts.Colorspace, "c", opts.Colorspace, "color space alignments")
	cmd.Flags.IntVar(&opts.Divisor, "d", opts.Divisor, "divide quality/alignment score by this factor")
	cmd.Flags.IntVar(&opts.ExactErrors, "e", opts.ExactErrors, "print only alignments with the number of specified errors")
	cmd.Flags.BoolVar(&opts.IndelsOnly, "i", opts.IndelsOnly, "print only alignments with indels")
	cmd.Flags.IntVar(&opts.Wiggle, "g", opts.Wiggle, "gap \"wiggle\"")
	cmd.Flags.IntVar(&opts.ExpectedReads, "n", opts.ExpectedReads, "number of raw input paired-end reads (otherwise, inferred from all SAM records present)")
	cmd.Flags.BoolVar(&opts.PrintIncorrect, "p", opts.PrintIncorrect, "print incorrect alignments")
	cmd.Flags.IntVar(&opts.MinQuality, "q", opts.MinQuality, "consider only alignments with this mapping quality or greater")
	cmd.Flags.BoolVar(&opts.SingleEnd, "z", opts.SingleEnd, "input contains only single end reads")
	cmd.Flags.IntVar(&opts.ExactSubs, "s", opts.ExactSubs, "print only alignments with the number of specified SNPs")
	cmd.Flags.StringVar(&format, "format", "", `Input file format, "sam" or "bam". By default it is guessed from the file name.`)
	cmd.Flags.StringVar(&opts.OutPath, "out", opts.OutPath, `Report destination; "-" is stdout, and a ".gz" suffix compresses the output`)
	cmd.Flags.StringVar(&opts.IncorrectPath, "incorrect-out", opts.IncorrectPath, `Destination of incorrect alignments (with -p), written in the input format; "-" is stdout`)
	cmd.Flags.StringVar(&opts.ReportFormat, "report-format", opts.ReportFormat, `Report format, "text" or "tsv"`)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return env.UsageErrorf("eval takes at least one pathname argument")
		}
		if alignmentScore {
			opts.Metric = simeval.AlignmentScoreMetric
		}
		if format != "" {
			if opts.Format = bamprovider.ParseFileType(format); opts.Format == bamprovider.Unknown {
				return fmt.Errorf("unknown input format \"%s\"", format)
			}
		}
		_, err := simeval.Evaluate(vcontext.Background(), argv, opts)
		return err
	})
	return cmd
}

func newCmdDecode() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "decode",
		Short:    "Show the truth encoded in dwgsim read names",
		ArgsName: "name...",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return env.UsageErrorf("decode takes at least one read name")
		}
		var nErr int
		for _, name := range argv {
			truth, err := simeval.DecodeReadName(name)
			if err != nil {
				fmt.Fprintf(env.Stderr, "%v\n", err)
				nErr++
				continue
			}
			fmt.Fprintf(env.Stdout, "%s\t%v\n", name, truth)
		}
		if nErr > 0 {
			return fmt.Errorf("%d of %d names could not be decoded", nErr, len(argv))
		}
		return nil
	})
	return cmd
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-simeval",
			Short:    "Evaluate the accuracy of alignments of simulated reads",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdEval(),
				newCmdDecode(),
			},
		})
}
