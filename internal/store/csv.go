package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/files"
	"netmobcli/internal/spatial"
)

var csvHeader = []string{"city", "tile", "iris"}

// CSVStore keeps all regions in a single CSV file. Saving a region rewrites
// the file with that region's rows replaced.
type CSVStore struct {
	path    string
	manager *files.Manager

	mu sync.Mutex
}

// NewCSVStore creates a store backed by the file at path, written through
// the file manager.
func NewCSVStore(path string, manager *files.Manager) *CSVStore {
	return &CSVStore{path: path, manager: manager}
}

// Load returns the correspondence of a region.
func (s *CSVStore) Load(ctx context.Context, region string) (*spatial.Correspondence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read()
	if err != nil {
		return nil, err
	}
	pairs, ok := rows[region]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("correspondence for %s", region))
	}
	return spatial.NewCorrespondence(region, pairs)
}

// LoadAll returns every stored region sorted by name.
func (s *CSVStore) LoadAll(ctx context.Context) ([]*spatial.Correspondence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read()
	if err != nil {
		return nil, err
	}
	regions := make([]string, 0, len(rows))
	for r := range rows {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	out := make([]*spatial.Correspondence, 0, len(regions))
	for _, r := range regions {
		c, err := spatial.NewCorrespondence(r, rows[r])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Save replaces the rows of c's region.
func (s *CSVStore) Save(ctx context.Context, c *spatial.Correspondence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read()
	if err != nil {
		return err
	}
	rows[c.Region] = c.Pairs()

	data, err := encodeCSV(rows)
	if err != nil {
		return apperrors.NewStorageError("failed to encode matching table", err)
	}
	if err := s.manager.WriteFile(s.path, data); err != nil {
		return apperrors.NewStorageError("failed to write matching table", err)
	}
	return nil
}

// read loads the whole file. A missing file is an empty table.
func (s *CSVStore) read() (map[string][]spatial.Pair, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string][]spatial.Pair), nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open matching table", err)
	}
	defer f.Close()
	return decodeCSV(f)
}

func decodeCSV(r io.Reader) (map[string][]spatial.Pair, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return make(map[string][]spatial.Pair), nil
	}
	if err != nil {
		return nil, apperrors.NewParsingError("matching table header", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range csvHeader {
		if _, ok := cols[name]; !ok {
			return nil, apperrors.NewParsingError(fmt.Sprintf("matching table has no %q column", name), nil)
		}
	}

	rows := make(map[string][]spatial.Pair)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("matching table line %d", line), err)
		}
		if len(record) < len(header) {
			return nil, apperrors.NewParsingError(fmt.Sprintf("matching table line %d: %d fields", line, len(record)), nil)
		}
		tile, err := strconv.ParseInt(strings.TrimSpace(record[cols["tile"]]), 10, 64)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("matching table line %d: tile", line), err)
		}
		city := strings.TrimSpace(record[cols["city"]])
		rows[city] = append(rows[city], spatial.Pair{
			Tile: tile,
			Zone: strings.TrimSpace(record[cols["iris"]]),
		})
	}
	return rows, nil
}

func encodeCSV(rows map[string][]spatial.Pair) ([]byte, error) {
	regions := make([]string, 0, len(rows))
	for r := range rows {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range regions {
		for _, p := range rows[r] {
			if err := w.Write([]string{r, strconv.FormatInt(p.Tile, 10), p.Zone}); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
