package bamprovider

import (
	"context"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// openSAM reads the header of a SAM file and prepares p.reader for reading
// its records. Compressed files are detected by content.
func (p *FileProvider) openSAM(ctx context.Context) error {
	in, closeIn, err := openInput(ctx, p.Path)
	if err != nil {
		return err
	}
	p.closers = append(p.closers, closeIn)

	r, _ := compress.NewReader(in)
	p.closers = append(p.closers, r.Close)
	reader, err := sam.NewReader(r)
	if err != nil {
		return errors.Wrapf(err, "%s: read SAM header", p.Path)
	}
	p.reader = reader
	return nil
}
