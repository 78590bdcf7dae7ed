package bamprovider

import (
	"io"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// Writer writes sam.Records as SAM text or BAM.
type Writer struct {
	format FileType
	sw     *sam.Writer
	bw     *bam.Writer
}

// NewWriter creates a Writer that writes header and then records to w, in
// the given format.
func NewWriter(w io.Writer, header *sam.Header, format FileType) (*Writer, error) {
	out := &Writer{format: format}
	var err error
	switch format {
	case SAM:
		out.sw, err = sam.NewWriter(w, header, sam.FlagDecimal)
	case BAM:
		out.bw, err = bam.NewWriter(w, header, 1)
	default:
		err = errors.Errorf("cannot write records as %v", format)
	}
	if err != nil {
		return nil, errors.Wrap(err, "create record writer")
	}
	return out, nil
}

// Write writes one record.
func (w *Writer) Write(r *sam.Record) error {
	if w.bw != nil {
		return w.bw.Write(r)
	}
	return w.sw.Write(r)
}

// Close flushes buffered records. It does not close the underlying
// io.Writer.
func (w *Writer) Close() error {
	if w.bw != nil {
		return w.bw.Close()
	}
	return nil
}
