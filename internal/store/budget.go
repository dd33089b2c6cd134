package store

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/civiscope/civiscope/internal/model"
)

// BudgetStore is the in-memory budget, keyed by line-item name.
// Duplicate names in the CSV resolve last-write-wins.
type BudgetStore struct {
	items  map[string]model.BudgetItem
	order  []string
	logger *zap.Logger
}

// NewBudgetStore returns an empty store.
func NewBudgetStore(logger *zap.Logger) *BudgetStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetStore{items: make(map[string]model.BudgetItem), logger: logger}
}

// LoadFile loads budget items from a CSV file, falling back to the
// built-in defaults when the file is missing.
func (s *BudgetStore) LoadFile(path string) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("budget file missing, using defaults", zap.String("path", path))
			s.LoadDefaults()
			return LoadResult{Loaded: s.Len(), Defaulted: true}, nil
		}
		return LoadResult{}, fmt.Errorf("open budget file: %w", err)
	}
	defer f.Close()
	return s.Load(f)
}

// Load reads the budget CSV schema: Name,Allocated,Spent,Category.
// The header row is required and skipped; bad rows are skipped and
// reported.
func (s *BudgetStore) Load(r io.Reader) (LoadResult, error) {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	var res LoadResult
	items := make(map[string]model.BudgetItem)
	order := make([]string, 0)

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
		item, err := parseBudgetRow(rec)
		if err != nil {
			res.RowErrors = append(res.RowErrors, RowError{Line: line, Err: err})
			s.logger.Warn("skipping budget row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if _, dup := items[item.Name]; !dup {
			order = append(order, item.Name)
		}
		items[item.Name] = item
	}

	s.items = items
	s.order = order
	res.Loaded = len(items)
	return res, nil
}

func parseBudgetRow(rec []string) (model.BudgetItem, error) {
	if len(rec) < 4 {
		return model.BudgetItem{}, fmt.Errorf("expected at least 4 tokens, got %d", len(rec))
	}
	name := strings.TrimSpace(rec[0])
	if name == "" {
		return model.BudgetItem{}, fmt.Errorf("empty item name")
	}
	allocated, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return model.BudgetItem{}, fmt.Errorf("allocated: %w", err)
	}
	spent, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	if err != nil {
		return model.BudgetItem{}, fmt.Errorf("spent: %w", err)
	}
	cat, err := model.ParseCategory(rec[3])
	if err != nil {
		return model.BudgetItem{}, err
	}
	return model.BudgetItem{Name: name, Allocated: allocated, Spent: spent, Category: cat}, nil
}

// LoadDefaults replaces the store contents with the built-in dataset.
func (s *BudgetStore) LoadDefaults() {
	s.items = make(map[string]model.BudgetItem)
	s.order = s.order[:0]
	for _, item := range defaultBudget() {
		s.items[item.Name] = item
		s.order = append(s.order, item.Name)
	}
}

// Items returns budget items in load order.
func (s *BudgetStore) Items() []model.BudgetItem {
	out := make([]model.BudgetItem, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.items[name])
	}
	return out
}

// Get returns the named line item.
func (s *BudgetStore) Get(name string) (model.BudgetItem, bool) {
	item, ok := s.items[name]
	return item, ok
}

// Set inserts or overwrites a line item.
func (s *BudgetStore) Set(item model.BudgetItem) {
	if _, dup := s.items[item.Name]; !dup {
		s.order = append(s.order, item.Name)
	}
	s.items[item.Name] = item
}

// Replace swaps in a new item set (plan restore).
func (s *BudgetStore) Replace(items []model.BudgetItem) {
	s.items = make(map[string]model.BudgetItem, len(items))
	s.order = s.order[:0]
	for _, item := range items {
		s.Set(item)
	}
}

// CategoryTotals sums allocations and spending per category.
func (s *BudgetStore) CategoryTotals() map[model.Category]model.BudgetItem {
	totals := make(map[model.Category]model.BudgetItem)
	for _, name := range s.order {
		item := s.items[name]
		t := totals[item.Category]
		t.Name = item.Category.String()
		t.Category = item.Category
		t.Allocated += item.Allocated
		t.Spent += item.Spent
		totals[item.Category] = t
	}
	return totals
}

// Len returns the number of line items.
func (s *BudgetStore) Len() int { return len(s.items) }
