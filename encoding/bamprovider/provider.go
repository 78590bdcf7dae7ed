package bamprovider

import (
	"context"
	"io"
	"os"
	"strings"

	gerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// StdioPath names stdin when used as an input path.
const StdioPath = "-"

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Format overrides the file type guessed from the path.
	Format FileType
}

// Provider reads the records of one SAM or BAM file in file order.
type Provider interface {
	// GetHeader returns the header of the file. The callee must not modify
	// the returned header object.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over all the records in the file,
	// in the order they are stored. The file is read once, so NewIterator
	// may be called only once; later calls return an iterator that yields
	// an error.
	//
	// REQUIRES: Close has not been called.
	NewIterator() Iterator

	// Close must be called exactly once. It returns any error encountered
	// by the provider or its iterator.
	//
	// REQUIRES: The iterator created by NewIterator has been closed.
	Close() error
}

// Iterator iterates over sam.Records. Thread compatible.
type Iterator interface {
	// Scan returns where there are any records remaining in the iterator,
	// and if so, advances the iterator to the next record. If the iterator
	// reaches the end of the file, Scan() returns false. If an error
	// occurs, Scan() returns false and the error can be retrieved by
	// calling Err().
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record in the iterator. This must be
	// called only after a call to Scan() returns true.
	//
	// REQUIRES: Close has not been called.
	Record() *sam.Record

	// Err returns the error encoutered during iteration, or nil if no error
	// occurred. An io.EOF error will be translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

// FileType represents the type of an alignment file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// SAM file, optionally compressed.
	SAM
	// BAM file
	BAM
)

func (t FileType) String() string {
	switch t {
	case SAM:
		return "sam"
	case BAM:
		return "bam"
	}
	return "unknown"
}

// ParseFileType parses the file type string. "bam" returns bamprovider.BAM, for
// example. On error, it returns Unknown.
func ParseFileType(name string) FileType {
	switch name {
	case "sam":
		return SAM
	case "bam":
		return BAM
	default:
		return Unknown
	}
}

// GuessFileType returns the file type from the pathname. Returns Unknown if
// the name gives no hint.
func GuessFileType(path string) FileType {
	if strings.HasSuffix(path, ".bam") {
		return BAM
	}
	if path == StdioPath || strings.HasSuffix(path, ".sam") || strings.Contains(path, ".sam.") {
		return SAM
	}
	vlog.VI(1).Infof("%v: could not detect file type.", path)
	return Unknown
}

// ResolveFileType returns format if it is known, else the type guessed from
// path. Unknown types resolve to SAM.
func ResolveFileType(path string, format FileType) FileType {
	if format == Unknown {
		format = GuessFileType(path)
	}
	if format == Unknown {
		format = SAM
	}
	return format
}

func mergeOpts(optList []ProviderOpts) ProviderOpts {
	opts := ProviderOpts{}
	for _, o := range optList {
		if o.Format != Unknown {
			opts.Format = o.Format
		}
	}
	return opts
}

// NewProvider creates a Provider object that can handle the SAM or BAM file
// at "path". Unless overridden by the options, the file type is detected
// from the path, and files of unknown type are read as SAM.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	opts := mergeOpts(optList)
	return &FileProvider{Path: path, Format: ResolveFileType(path, opts.Format)}
}

// recordReader is implemented by the SAM and BAM readers.
type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

// FileProvider implements Provider by streaming a file through a SAM or BAM
// reader. Paths may name any file supported by grailbio/base/file, or
// StdioPath.
type FileProvider struct {
	// Path of the file. Must be nonempty.
	Path string
	// Format must be SAM or BAM.
	Format FileType

	err     gerrors.Once
	reader  recordReader
	closers []func() error
	opened  bool
	iter    bool
}

// openInput opens path for reading. The returned function closes it.
func openInput(ctx context.Context, path string) (io.Reader, func() error, error) {
	if path == StdioPath {
		return os.Stdin, func() error { return nil }, nil
	}
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	return in.Reader(ctx), func() error { return in.Close(ctx) }, nil
}

// open creates the reader on first use.
func (p *FileProvider) open() error {
	if p.opened {
		return p.err.Err()
	}
	p.opened = true
	ctx := vcontext.Background()
	var err error
	switch p.Format {
	case BAM:
		err = p.openBAM(ctx)
	case SAM:
		err = p.openSAM(ctx)
	default:
		err = errors.Errorf("%s: unsupported file type %v", p.Path, p.Format)
	}
	if err != nil {
		p.err.Set(err)
	}
	vlog.VI(1).Infof("%s: opened as %v, err %v", p.Path, p.Format, err)
	return err
}

// GetHeader implements the Provider interface.
func (p *FileProvider) GetHeader() (*sam.Header, error) {
	if err := p.open(); err != nil {
		return nil, err
	}
	return p.reader.Header(), nil
}

// NewIterator implements the Provider interface.
func (p *FileProvider) NewIterator() Iterator {
	if err := p.open(); err != nil {
		return NewErrorIterator(err)
	}
	if p.iter {
		return NewErrorIterator(errors.Errorf("%s: file can be iterated only once", p.Path))
	}
	p.iter = true
	return &fileIterator{provider: p}
}

// Close implements the Provider interface.
func (p *FileProvider) Close() error {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.err.Set(p.closers[i]())
	}
	p.closers = nil
	return p.err.Err()
}

type fileIterator struct {
	provider *FileProvider
	rec      *sam.Record
	err      error
	done     bool
}

// Scan implements the Iterator interface.
func (i *fileIterator) Scan() bool {
	if i.done {
		return false
	}
	rec, err := i.provider.reader.Read()
	if err != nil {
		i.done = true
		if err != io.EOF {
			i.err = errors.Wrapf(err, "%s: read record", i.provider.Path)
			i.provider.err.Set(i.err)
		}
		return false
	}
	i.rec = rec
	return true
}

// Record implements the Iterator interface.
func (i *fileIterator) Record() *sam.Record { return i.rec }

// Err implements the Iterator interface.
func (i *fileIterator) Err() error { return i.err }

// Close implements the Iterator interface.
func (i *fileIterator) Close() error {
	i.done = true
	return i.err
}

// errIterator is returned by NewIterator when no records can be read.
type errIterator struct{ err error }

func (i errIterator) Scan() bool          { return false }
func (i errIterator) Record() *sam.Record { panic("Record called on a failed iterator") }
func (i errIterator) Err() error          { return i.err }
func (i errIterator) Close() error        { return i.err }

// NewErrorIterator creates an Iterator that yields no record and returns "err"
// in Err and Close.
func NewErrorIterator(err error) Iterator {
	return errIterator{err: err}
}
