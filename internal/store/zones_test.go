package store

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/civiscope/civiscope/internal/model"
)

const zoneHeader = "Name,X,Y,Type,Cost,Impact1,Value1,Impact2,Value2,Impact3,Value3\n"

func TestLoadZoneRow(t *testing.T) {
	t.Parallel()

	s := NewZoneStore(nil)
	res, err := s.Load(strings.NewReader(zoneHeader + "A,1,2,Park,10,Env,5,Rec,3\n"))
	require.NoError(t, err)
	require.Empty(t, res.RowErrors)
	require.Equal(t, 1, res.Loaded)

	z, ok := s.Get("A")
	require.True(t, ok)
	require.Equal(t, model.Point{X: 1, Y: 2}, z.Pos)
	require.Equal(t, model.CategoryPark, z.Category)
	require.Equal(t, 10.0, z.Cost)
	require.Equal(t, map[string]float64{"Env": 5, "Rec": 3}, z.Impacts)
}

func TestLoadSkipsBadRowsAndContinues(t *testing.T) {
	t.Parallel()

	data := zoneHeader +
		"A,1,2,Park,10,Env,5\n" +
		"B,not-a-number,2,Park,10,Env,5\n" + // bad x
		"C,1,2,Casino,10,Env,5\n" + // unknown category
		"D,1,2,Park\n" + // too few tokens
		"E,3,4,Housing,20,Env,oops\n" + // bad impact value
		"F,5,6,Health,30,Env,1\n"

	s := NewZoneStore(nil)
	res, err := s.Load(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, res.Loaded)
	require.Len(t, res.RowErrors, 4)

	lines := make([]int, 0, len(res.RowErrors))
	for _, re := range res.RowErrors {
		lines = append(lines, re.Line)
	}
	require.Equal(t, []int{3, 4, 5, 6}, lines)

	_, ok := s.Get("A")
	require.True(t, ok)
	_, ok = s.Get("F")
	require.True(t, ok)
	_, ok = s.Get("B")
	require.False(t, ok)
}

func TestLoadUnknownCategoryErrorIsTyped(t *testing.T) {
	t.Parallel()

	s := NewZoneStore(nil)
	res, err := s.Load(strings.NewReader(zoneHeader + "A,1,2,Casino,10,Env,5\n"))
	require.NoError(t, err)
	require.Len(t, res.RowErrors, 1)
	require.ErrorIs(t, res.RowErrors[0], model.ErrUnknownCategory)
}

func TestLoadDuplicateNameLastWriteWins(t *testing.T) {
	t.Parallel()

	data := zoneHeader +
		"A,1,2,Park,10,Env,5\n" +
		"A,9,9,Housing,99,Env,1\n"
	s := NewZoneStore(nil)
	res, err := s.Load(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 1, res.Loaded)

	z, _ := s.Get("A")
	require.Equal(t, model.CategoryHousing, z.Category)
	require.Equal(t, 99.0, z.Cost)
}

func TestLoadFileMissingFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	s := NewZoneStore(nil)
	res, err := s.LoadFile(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	require.True(t, res.Defaulted)
	require.NotZero(t, s.Len())

	_, ok := s.Get("Central Park")
	require.True(t, ok)
}

func TestSaveCapsAndPadsImpactPairs(t *testing.T) {
	t.Parallel()

	s := NewZoneStore(nil)
	s.Replace([]*model.Zone{
		{
			Name: "Many", Pos: model.Point{X: 1, Y: 1}, Category: model.CategoryPark, Cost: 10,
			Impacts: map[string]float64{"A": 1, "B": 2, "C": 3, "D": 4},
		},
		{
			Name: "One", Pos: model.Point{X: 2, Y: 2}, Category: model.CategoryHealth, Cost: 20,
			Impacts: map[string]float64{"A": 1},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines[1:] {
		require.Len(t, strings.Split(line, ","), 11, line)
	}
	require.NotContains(t, lines[1], "D", "fourth impact pair must be dropped")
	require.True(t, strings.HasSuffix(lines[2], ",,,,"), "missing pairs blank-padded: %s", lines[2])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewZoneStore(nil)
	s.LoadDefaults()

	// the save format keeps at most 3 impact pairs (name order), so
	// compare against that projection
	type tuple struct {
		pos     model.Point
		cat     model.Category
		cost    float64
		impacts string
	}
	project := func(z *model.Zone) tuple {
		names := make([]string, 0, len(z.Impacts))
		for n := range z.Impacts {
			names = append(names, n)
		}
		sort.Strings(names)
		if len(names) > 3 {
			names = names[:3]
		}
		var b strings.Builder
		for _, n := range names {
			b.WriteString(n)
			b.WriteByte('=')
			b.WriteString(strings.TrimSpace(formatFloat(z.Impacts[n])))
			b.WriteByte(';')
		}
		return tuple{pos: z.Pos, cat: z.Category, cost: z.Cost, impacts: b.String()}
	}

	want := map[string]tuple{}
	for _, z := range s.Zones() {
		want[z.Name] = project(z)
	}

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))

	reloaded := NewZoneStore(nil)
	res, err := reloaded.Load(&buf)
	require.NoError(t, err)
	require.Empty(t, res.RowErrors)
	require.Equal(t, len(want), reloaded.Len())

	for name, exp := range want {
		z, ok := reloaded.Get(name)
		require.True(t, ok, name)
		require.Equal(t, exp, project(z), name)
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "zones.csv")
	s := NewZoneStore(nil)
	s.LoadDefaults()
	require.NoError(t, s.SaveFile(path))

	reloaded := NewZoneStore(nil)
	res, err := reloaded.LoadFile(path)
	require.NoError(t, err)
	require.False(t, res.Defaulted)
	require.Equal(t, s.Len(), reloaded.Len())
}

func TestMove(t *testing.T) {
	t.Parallel()

	s := NewZoneStore(nil)
	s.LoadDefaults()
	require.True(t, s.Move("Central Park", model.Point{X: 99, Y: 1}))
	z, _ := s.Get("Central Park")
	require.Equal(t, model.Point{X: 99, Y: 1}, z.Pos)
	require.False(t, s.Move("Nowhere", model.Point{}))
}
