package bamprovider_test

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/bio-simeval/encoding/bamprovider"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

const testSAM = "@HD\tVN:1.4\n" +
	"@SQ\tSN:chr1\tLN:100000\n" +
	"read1\t65\tchr1\t101\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
	"read1\t129\tchr1\t301\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
	"read2\t65\tchr1\t201\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
	"read3\t69\t*\t0\t0\t*\t*\t0\t0\tACGT\tIIII\n"

var testNames = []string{"read1", "read1", "read2", "read3"}

func doRead(t *testing.T, p bamprovider.Provider) []string {
	var names []string
	iter := p.NewIterator()
	for iter.Scan() {
		names = append(names, iter.Record().Name)
	}
	require.NoError(t, iter.Err())
	require.NoError(t, iter.Close())
	require.NoError(t, p.Close())
	return names
}

func TestGuessFileType(t *testing.T) {
	for _, test := range []struct {
		path string
		want bamprovider.FileType
	}{
		{"foo.bam", bamprovider.BAM},
		{"s3://bucket/dir/foo.bam", bamprovider.BAM},
		{"foo.sam", bamprovider.SAM},
		{"foo.sam.gz", bamprovider.SAM},
		{"-", bamprovider.SAM},
		{"foo.txt", bamprovider.Unknown},
		{"foo.bam.bai", bamprovider.Unknown},
	} {
		expect.EQ(t, bamprovider.GuessFileType(test.path), test.want, test.path)
	}
}

func TestResolveFileType(t *testing.T) {
	expect.EQ(t, bamprovider.ResolveFileType("foo.bam", bamprovider.Unknown), bamprovider.BAM)
	expect.EQ(t, bamprovider.ResolveFileType("foo.bam", bamprovider.SAM), bamprovider.SAM)
	expect.EQ(t, bamprovider.ResolveFileType("foo.txt", bamprovider.Unknown), bamprovider.SAM)
	expect.EQ(t, bamprovider.ResolveFileType("foo.txt", bamprovider.BAM), bamprovider.BAM)
}

func TestSAM(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, "tempdir:", dir)

	path := filepath.Join(dir, "test.sam")
	require.NoError(t, ioutil.WriteFile(path, []byte(testSAM), 0644))
	p := bamprovider.NewProvider(path)
	header, err := p.GetHeader()
	require.NoError(t, err)
	require.Equal(t, 1, len(header.Refs()))
	expect.EQ(t, header.Refs()[0].Name(), "chr1")
	expect.EQ(t, doRead(t, p), testNames)
}

func TestCompressedSAM(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, "tempdir:", dir)

	path := filepath.Join(dir, "test.sam.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(testSAM))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	expect.EQ(t, doRead(t, bamprovider.NewProvider(path)), testNames)
}

func TestFormatOverride(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, "tempdir:", dir)

	// A SAM file with a misleading name.
	path := filepath.Join(dir, "test.bam")
	require.NoError(t, ioutil.WriteFile(path, []byte(testSAM), 0644))
	p := bamprovider.NewProvider(path, bamprovider.ProviderOpts{Format: bamprovider.SAM})
	expect.EQ(t, doRead(t, p), testNames)
}

func TestBAMRoundTrip(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, "tempdir:", dir)

	samPath := filepath.Join(dir, "test.sam")
	bamPath := filepath.Join(dir, "test.bam")
	require.NoError(t, ioutil.WriteFile(samPath, []byte(testSAM), 0644))

	in := bamprovider.NewProvider(samPath)
	header, err := in.GetHeader()
	require.NoError(t, err)
	out, err := os.Create(bamPath)
	require.NoError(t, err)
	w, err := bamprovider.NewWriter(out, header, bamprovider.BAM)
	require.NoError(t, err)
	iter := in.NewIterator()
	for iter.Scan() {
		require.NoError(t, w.Write(iter.Record()))
	}
	require.NoError(t, iter.Close())
	require.NoError(t, in.Close())
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())

	p := bamprovider.NewProvider(bamPath)
	header, err = p.GetHeader()
	require.NoError(t, err)
	expect.EQ(t, header.Refs()[0].Name(), "chr1")
	expect.EQ(t, doRead(t, p), testNames)
}

func TestSAMWriter(t *testing.T) {
	ref, err := sam.NewReference("chr1", "", "", 100000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := bamprovider.NewWriter(&buf, header, bamprovider.SAM)
	require.NoError(t, err)
	rec := &sam.Record{Name: "read1", Ref: ref, Pos: 100, MapQ: 60, Flags: sam.Paired | sam.Read1, MatePos: -1}
	assert.NoError(t, w.Write(rec))
	assert.NoError(t, w.Close())
	expect.True(t, strings.Contains(buf.String(), "@SQ\tSN:chr1\tLN:100000"), buf.String())
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	last := lines[len(lines)-1]
	expect.True(t, strings.HasPrefix(last, "read1\t65\tchr1\t101\t60\t"), last)

	_, err = bamprovider.NewWriter(&buf, header, bamprovider.Unknown)
	expect.NotNil(t, err)
}

func TestError(t *testing.T) {
	p := bamprovider.NewProvider("nonexistent.bam")
	_, err := p.GetHeader()
	require.Regexp(t, "no such file", err.Error())

	iter := p.NewIterator()
	expect.False(t, iter.Scan())
	require.Regexp(t, "no such file", iter.Close().Error())
	require.Regexp(t, "no such file", p.Close().Error())
}

func TestIterateOnce(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, "tempdir:", dir)

	path := filepath.Join(dir, "test.sam")
	require.NoError(t, ioutil.WriteFile(path, []byte(testSAM), 0644))
	p := bamprovider.NewProvider(path)
	iter := p.NewIterator()
	require.NoError(t, iter.Close())
	again := p.NewIterator()
	expect.False(t, again.Scan())
	require.Regexp(t, "only once", again.Close().Error())
	require.NoError(t, p.Close())
}

func ExampleParseFileType() {
	fmt.Printf("%d\n", bamprovider.ParseFileType("sam"))
	fmt.Printf("%d\n", bamprovider.ParseFileType("bam"))
	fmt.Printf("%d\n", bamprovider.ParseFileType("pam"))
	// Output:
	// 1
	// 2
	// 0
}
