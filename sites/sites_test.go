package sites_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skfile/argweaver/sites"
)

const fixture = `NAMES	sample1	sample2	sample3
REGION	chr1	1	100
5	ACA
17	GGT
42	NCC
`

// TestRead_Fixture parses headers and data rows, converting to 0-based
// half-open coordinates.
func TestRead_Fixture(t *testing.T) {
	s, err := sites.Read(strings.NewReader(fixture))
	require.NoError(t, err)

	assert.Equal(t, []string{"sample1", "sample2", "sample3"}, s.Names)
	assert.Equal(t, "chr1", s.Chrom)
	assert.Equal(t, 0, s.Start)
	assert.Equal(t, 100, s.End)
	assert.Equal(t, 3, s.NumSites())
	assert.Equal(t, []int{4, 16, 41}, s.Positions())
}

// TestBase_VariantInvariantMasked covers the three serving modes.
func TestBase_VariantInvariantMasked(t *testing.T) {
	s, err := sites.Read(strings.NewReader(fixture))
	require.NoError(t, err)
	s.SetMasks([]sites.Region{{Start: 60, End: 70}})

	assert.Equal(t, byte('C'), s.Base(1, 4), "variant column")
	assert.Equal(t, byte('T'), s.Base(2, 16))
	assert.Equal(t, byte('N'), s.Base(0, 41), "missing data preserved")
	assert.Equal(t, sites.Background, s.Base(0, 10), "invariant background")
	assert.Equal(t, byte('N'), s.Base(0, 65), "masked region")
	assert.Equal(t, byte('N'), s.Base(7, 4), "unknown sequence id")
}

// TestRead_Malformed rejects bad headers, widths, ordering, and bases.
func TestRead_Malformed(t *testing.T) {
	cases := map[string]string{
		"data before headers": "5\tACA\n",
		"bad column width":    "NAMES\ta\tb\nREGION\tchr1\t1\t10\n3\tACA\n",
		"bad base":            "NAMES\ta\tb\nREGION\tchr1\t1\t10\n3\tAX\n",
		"position outside":    "NAMES\ta\tb\nREGION\tchr1\t1\t10\n11\tAC\n",
	}
	for name, text := range cases {
		_, err := sites.Read(strings.NewReader(text))
		assert.Error(t, err, name)
	}

	_, err := sites.Read(strings.NewReader(
		"NAMES\ta\tb\nREGION\tchr1\t1\t10\n5\tAC\n3\tAC\n"))
	assert.ErrorIs(t, err, sites.ErrOrder)
}

// TestWrite_RoundTrip serializes and reparses.
func TestWrite_RoundTrip(t *testing.T) {
	s, err := sites.Read(strings.NewReader(fixture))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	back, err := sites.Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, s.Names, back.Names)
	assert.Equal(t, s.Start, back.Start)
	assert.Equal(t, s.End, back.End)
	assert.Equal(t, s.Positions(), back.Positions())
	for _, pos := range s.Positions() {
		want, _ := s.Column(pos)
		got, _ := back.Column(pos)
		assert.Equal(t, want, got)
	}
}

// TestReadRateMap parses the TSV track and filters by chromosome.
func TestReadRateMap(t *testing.T) {
	text := "chr1\t0\t50\t1e-8\nchr2\t0\t99\t5e-8\nchr1\t50\t80\t3e-8\n"
	rm, err := sites.ReadRateMap(strings.NewReader(text), "chr1")
	require.NoError(t, err)

	assert.Equal(t, 2, rm.Len())
	assert.Equal(t, 1e-8, rm.Find(10, 0))
	assert.Equal(t, 3e-8, rm.Find(79, 0))
	assert.Equal(t, 0.0, rm.Find(90, 0))
}

// TestReadRateMap_Overlap propagates the map invariant error.
func TestReadRateMap_Overlap(t *testing.T) {
	text := "chr1\t0\t50\t1e-8\nchr1\t40\t80\t3e-8\n"
	_, err := sites.ReadRateMap(strings.NewReader(text), "chr1")
	assert.Error(t, err)
}
