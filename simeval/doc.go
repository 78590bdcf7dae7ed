// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*Package simeval measures how well an aligner placed reads simulated by
  dwgsim.

  dwgsim encodes the origin of every read in its name: the chromosome, the
  positions and strands of both mates, whether each mate is random sequence
  that should not map anywhere, and the number of errors, substitutions and
  indels introduced into each mate. DecodeReadName recovers that truth.

  Classify compares one alignment against the truth and yields a
  Classification: the score bin it falls in (mapping quality or alignment
  score, divided by Opts.Divisor), whether the read should map (Actual), and
  what the aligner did with it (Predicted):

    mc  mappable, mapped correctly
    mi  mappable, mapped incorrectly
    mu  mappable, unmapped
    um  unmappable, mapped
    uu  unmappable, unmapped

  A Histogram accumulates the five counters per score. ComputeRows walks the
  histogram from the highest score down and derives, for every threshold,
  sensitivity, positive predictive value and false discovery rate both at
  the threshold and for all scores at or above it.

  Evaluate ties the pieces together for a list of SAM/BAM inputs.
*/
package simeval
