package bamprovider

import (
	"context"
	"io"

	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/bgzf"
	"github.com/pkg/errors"
)

// openBAM reads the header of a BAM file and prepares p.reader for reading
// its records.
func (p *FileProvider) openBAM(ctx context.Context) error {
	in, closeIn, err := openInput(ctx, p.Path)
	if err != nil {
		return err
	}
	p.closers = append(p.closers, closeIn)

	// A local file also supports ReadAt, which lets us check the BGZF EOF
	// marker without disturbing the read offset.
	if ra, ok := in.(io.ReaderAt); ok {
		if hasEOF, err := bgzf.HasEOF(ra); err == nil && !hasEOF {
			log.Error.Printf("%s: no BGZF EOF marker, the file may be truncated", p.Path)
		}
	}
	reader, err := bam.NewReader(in, 1)
	if err != nil {
		return errors.Wrapf(err, "%s: read BAM header", p.Path)
	}
	p.closers = append(p.closers, reader.Close)
	p.reader = reader
	return nil
}
