// Package store holds the in-memory zone and budget datasets and
// their CSV load/save paths. Loads are row-tolerant: a malformed row
// is reported and skipped, never aborting the rest of the file.
package store

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/civiscope/civiscope/internal/model"
)

// savedImpactPairs is the cap on impact pairs written per zone row.
const savedImpactPairs = 3

// RowError reports one skipped CSV row.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// LoadResult summarizes a dataset load.
type LoadResult struct {
	Loaded    int
	Defaulted bool
	RowErrors []RowError
}

// ZoneStore is the in-memory set of zones, keyed by name.
type ZoneStore struct {
	zones  []*model.Zone
	index  map[string]int
	logger *zap.Logger
}

// NewZoneStore returns an empty store.
func NewZoneStore(logger *zap.Logger) *ZoneStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZoneStore{index: make(map[string]int), logger: logger}
}

// LoadFile loads zones from a CSV file. A missing file is not an
// error: the store falls back to the built-in default dataset.
func (s *ZoneStore) LoadFile(path string) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("zone file missing, using defaults", zap.String("path", path))
			s.LoadDefaults()
			return LoadResult{Loaded: s.Len(), Defaulted: true}, nil
		}
		return LoadResult{}, fmt.Errorf("open zone file: %w", err)
	}
	defer f.Close()
	return s.Load(f)
}

// Load reads the zone CSV schema: Name,X,Y,Type,Cost followed by
// repeated impact name/value pairs. The header row is required and
// skipped. Bad rows are skipped and reported in the result.
func (s *ZoneStore) Load(r io.Reader) (LoadResult, error) {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	var res LoadResult
	zones := make([]*model.Zone, 0)
	index := make(map[string]int)

	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.RowErrors = append(res.RowErrors, RowError{Line: line, Err: err})
			continue
		}
		if line == 1 {
			continue // header
		}
		z, err := parseZoneRow(rec)
		if err != nil {
			res.RowErrors = append(res.RowErrors, RowError{Line: line, Err: err})
			s.logger.Warn("skipping zone row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if i, dup := index[z.Name]; dup {
			zones[i] = z // last write wins
			continue
		}
		index[z.Name] = len(zones)
		zones = append(zones, z)
	}

	s.zones = zones
	s.index = index
	res.Loaded = len(zones)
	return res, nil
}

func parseZoneRow(rec []string) (*model.Zone, error) {
	if len(rec) < 6 {
		return nil, fmt.Errorf("expected at least 6 tokens, got %d", len(rec))
	}
	name := strings.TrimSpace(rec[0])
	if name == "" {
		return nil, fmt.Errorf("empty zone name")
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("y: %w", err)
	}
	cat, err := model.ParseCategory(rec[3])
	if err != nil {
		return nil, err
	}
	cost, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
	if err != nil {
		return nil, fmt.Errorf("cost: %w", err)
	}

	impacts := make(map[string]float64)
	for i := 5; i+1 < len(rec); i += 2 {
		impactName := strings.TrimSpace(rec[i])
		if impactName == "" {
			continue // blank padding from the save format
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("impact %q: %w", impactName, err)
		}
		impacts[impactName] = v
	}

	return &model.Zone{
		Name:     name,
		Pos:      model.Point{X: x, Y: y},
		Category: cat,
		Cost:     cost,
		Impacts:  impacts,
	}, nil
}

// Save writes the store back out in the zone CSV schema, capped at
// three impact pairs per row and blank-padded when a zone has fewer.
// Impact pairs are emitted in name order so saves are deterministic.
func (s *ZoneStore) Save(w io.Writer) error {
	csvw := csv.NewWriter(w)
	header := []string{"Name", "X", "Y", "Type", "Cost"}
	for i := 1; i <= savedImpactPairs; i++ {
		header = append(header, fmt.Sprintf("Impact%d", i), fmt.Sprintf("Value%d", i))
	}
	if err := csvw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, z := range s.zones {
		rec := []string{
			z.Name,
			formatFloat(z.Pos.X),
			formatFloat(z.Pos.Y),
			z.Category.String(),
			formatFloat(z.Cost),
		}
		names := make([]string, 0, len(z.Impacts))
		for n := range z.Impacts {
			names = append(names, n)
		}
		sort.Strings(names)
		if len(names) > savedImpactPairs {
			names = names[:savedImpactPairs]
		}
		for _, n := range names {
			rec = append(rec, n, formatFloat(z.Impacts[n]))
		}
		for len(rec) < 5+2*savedImpactPairs {
			rec = append(rec, "")
		}
		if err := csvw.Write(rec); err != nil {
			return fmt.Errorf("write zone %s: %w", z.Name, err)
		}
	}
	csvw.Flush()
	return csvw.Error()
}

// SaveFile writes the zone CSV to path.
func (s *ZoneStore) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create zone file: %w", err)
	}
	defer f.Close()
	if err := s.Save(f); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// LoadDefaults replaces the store contents with the built-in dataset.
func (s *ZoneStore) LoadDefaults() {
	zones := defaultZones()
	s.zones = zones
	s.index = make(map[string]int, len(zones))
	for i, z := range zones {
		s.index[z.Name] = i
	}
}

// Zones returns the live zone slice. Callers mutate zones only
// through store methods; the reconciler and renderer read from it.
func (s *ZoneStore) Zones() []*model.Zone { return s.zones }

// Get returns the named zone.
func (s *ZoneStore) Get(name string) (*model.Zone, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.zones[i], true
}

// Move updates a zone's position, returning false for unknown names.
func (s *ZoneStore) Move(name string, pos model.Point) bool {
	i, ok := s.index[name]
	if !ok {
		return false
	}
	s.zones[i].Pos = pos
	return true
}

// Replace swaps in a new zone set (plan restore).
func (s *ZoneStore) Replace(zones []*model.Zone) {
	s.zones = make([]*model.Zone, 0, len(zones))
	s.index = make(map[string]int, len(zones))
	for _, z := range zones {
		if z == nil {
			continue
		}
		if i, dup := s.index[z.Name]; dup {
			s.zones[i] = z
			continue
		}
		s.index[z.Name] = len(s.zones)
		s.zones = append(s.zones, z)
	}
}

// Len returns the number of zones.
func (s *ZoneStore) Len() int { return len(s.zones) }
