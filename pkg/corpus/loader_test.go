package corpus

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestdata(t *testing.T) []*Doculect {
	t.Helper()
	ds, err := Load("testdata/listss.txt")
	require.NoError(t, err)
	return ds
}

func TestLoad(t *testing.T) {
	ds := loadTestdata(t)
	require.Len(t, ds, 4)

	en := ds[0]
	assert.Equal(t, "ENGLISH", en.Name)
	assert.Equal(t, "IE.GERMANIC", en.WALS)
	assert.Equal(t, "Indo-European,Germanic,West", en.Ethnologue)
	assert.Equal(t, "Indo-European,Germanic", en.Glottolog)
	assert.Equal(t, "IE", en.Family())
	assert.Equal(t, "GERMANIC", en.Genus())
	require.NotNil(t, en.Coord)
	assert.Equal(t, Coordinate{Lon: -1, Lat: 52}, *en.Coord)
	assert.Equal(t, 300000000, en.Population)
	assert.Equal(t, "eng", en.WALSCode)
	assert.Equal(t, "eng", en.ISO)

	// the XXX-only synset is dropped
	require.Len(t, en.Synsets, 5)
	assert.Equal(t, "I", en.Synsets[0].Meaning)
	assert.Equal(t, []Word{{Form: "pers3n"}, {Form: "pipol", Loan: true}}, en.Synsets[4].Words)
	assert.Equal(t, 6, en.WordCount())

	proto := ds[1]
	assert.True(t, proto.Proto())
	assert.Equal(t, 0, proto.Population)

	assert.True(t, ds[2].LongExtinct())

	nowhere := ds[3]
	assert.Nil(t, nowhere.Coord)
	assert.Equal(t, []Word{{Form: "nyin~a"}, {Form: "nu"}}, nowhere.Synsets[1].Words)
}

func TestParseNormalizesNames(t *testing.T) {
	in := "CAFE\u0301{X.Y|@}\n 1   1.00    2.00\n1 I\tna, //\n"
	ds, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "CAF\u00c9", ds[0].Name)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(" {X|@}\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("A{X|@}\n 1     abc    2.00\n"))
	assert.ErrorContains(t, err, "latitude")
}

func TestDescribe(t *testing.T) {
	info := Describe(loadTestdata(t))
	assert.Equal(t, Info{
		Doculects:          4,
		Meanings:           9,
		Words:              11,
		Languages:          3,
		FamiliesWALS:       4,
		FamiliesEthnologue: 3,
		FamiliesGlottolog:  3,
	}, info)
	assert.Contains(t, info.String(), "Total: 4 doculects, having 9 meanings and 11 words")
}

func TestFilter(t *testing.T) {
	ds := loadTestdata(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	r := Rules{Meanings: []string{"I", "you", "one"}, MinSynsets: 2, ExcludeNames: DefaultExcludedNames}
	out := Filter(log, ds, r)

	require.Len(t, out, 1)
	assert.Equal(t, "ENGLISH", out[0].Name)
	assert.Len(t, out[0].Synsets, 3)
	// restriction is applied to every input doculect
	assert.Len(t, ds[3].Synsets, 2)
	assert.Contains(t, buf.String(), "meanings intersected")
	assert.Contains(t, buf.String(), "doculects filtered")
}

func TestFilterRejectReasons(t *testing.T) {
	r := Rules{MinSynsets: 1, ExcludeNames: DefaultExcludedNames}
	coord := &Coordinate{Lon: 1, Lat: 1}
	one := []Synset{{Meaning: "I", Words: []Word{{Form: "a"}}}}
	cases := []struct {
		d    Doculect
		want string
	}{
		{Doculect{Name: "a", WALS: "Oth.X", ISO: "a", Coord: coord, Synsets: one}, "unclassified"},
		{Doculect{Name: "a", ISO: "", Coord: coord, Synsets: one}, "proto-language"},
		{Doculect{Name: "a", ISO: "a", Population: PopulationLongExtinct, Coord: coord, Synsets: one}, "ancient language"},
		{Doculect{Name: "Ugaritic", ISO: "a", Coord: coord, Synsets: one}, "excluded by name"},
		{Doculect{Name: "a", ISO: "a", Coord: coord}, "too few meanings"},
		{Doculect{Name: "a", ISO: "a", Synsets: one}, "no coordinates"},
		{Doculect{Name: "a", ISO: "a", Population: PopulationRecentlyExtinct, Coord: coord, Synsets: one}, ""},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			assert.Equal(t, c.want, r.reject(&c.d))
		})
	}
}

func TestFilterByAvailability(t *testing.T) {
	coord := &Coordinate{}
	ds := []*Doculect{
		{Name: "a", ISO: "a", Coord: coord},
		{Name: "b", ISO: "b", Coord: coord},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := Filter(log, ds, Rules{Available: map[string]bool{"b": true}})
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].Name)
}

func TestCache(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)

	first, hit, err := c.Load("testdata/listss.txt")
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.Load("testdata/listss.txt")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)

	require.NoError(t, c.Clear())
	_, hit, err = c.Load("testdata/listss.txt")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestOpenCacheDefaultsToXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	c, err := OpenCache("")
	require.NoError(t, err)
	assert.Equal(t, dir+"/sonority", c.Dir())
}
