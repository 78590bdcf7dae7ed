// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
bio-simeval evaluates alignments of reads simulated by dwgsim. The truth of
every read is encoded in its name; bio-simeval compares the primary alignment
of each read against it and reports, per mapping quality (or alignment
score) threshold, how many reads were mapped correctly, mapped incorrectly or
left unmapped, together with sensitivity, positive predictive value and false
discovery rate.

Sample usage:
bio-simeval eval -q 10 -g 5 aligned.bam > aligned.eval.txt
bio-simeval eval -z -a -d 10 -p -incorrect-out wrong.sam aligned.sam
bio-simeval decode chr1_1000_1200_0_1_0_0_1:0:0_2:1:0_1a
*/
package main
