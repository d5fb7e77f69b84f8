package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mdevolde/trace-analyzer/internal/config"
	"github.com/mdevolde/trace-analyzer/internal/fsutil"
	"github.com/mdevolde/trace-analyzer/internal/monitoring"
)

// Address table layout: one header row, then device in column 2 and
// hardware address in column 3.
const (
	deviceColumn  = 1
	addressColumn = 2
)

// LoadOptions controls how an address table is turned into a Directory.
type LoadOptions struct {
	// Selected restricts the directory to these device identities. Empty
	// keeps every row.
	Selected []string

	// DuplicatePolicy is one of the config.Duplicate* values. Empty means warn.
	DuplicatePolicy string

	// FS defaults to the OS filesystem.
	FS fsutil.FileSystem
}

// LoadFile reads an address table (.xlsx or .csv) and builds a Directory.
func LoadFile(path string, opts LoadOptions) (*Directory, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	policy := opts.DuplicatePolicy
	if policy == "" {
		policy = config.DuplicateWarn
	}

	monitoring.Debugf("Reading address table: %s", path)

	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableTable, err)
	}
	defer f.Close()

	var rows [][]string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(f)
	case ".csv":
		rows, err = readCSV(f)
	default:
		err = fmt.Errorf("unsupported table format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableTable, path, err)
	}

	entries := Entries(rows, opts.Selected)
	dir, err := New(entries, policy)
	if err != nil {
		return nil, err
	}

	warnMissingSelection(dir, opts.Selected)
	monitoring.Infof("Loaded MAC addresses for %d devices", dir.Len())
	return dir, nil
}

// Entries converts table rows into directory entries. The first row is a
// header. Rows missing the device or address column are skipped. When
// selected is non-empty only rows naming a selected device are kept.
func Entries(rows [][]string, selected []string) []Entry {
	want := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		want[s] = struct{}{}
	}

	var entries []Entry
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) <= addressColumn {
			if len(row) > 0 {
				monitoring.Debugf("skipping short table row %d", i+1)
			}
			continue
		}
		device := strings.TrimSpace(row[deviceColumn])
		addr := strings.ToLower(strings.TrimSpace(row[addressColumn]))
		if device == "" || addr == "" {
			continue
		}
		if len(want) > 0 {
			if _, ok := want[device]; !ok {
				continue
			}
		}
		monitoring.Debugf("Loaded device: %s -> %s", device, addr)
		entries = append(entries, Entry{Device: device, Address: addr})
	}
	return entries
}

func readWorkbook(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return wb.GetRows(sheets[0])
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func warnMissingSelection(dir *Directory, selected []string) {
	if len(selected) == 0 {
		return
	}
	present := make(map[string]struct{})
	for _, d := range dir.Devices() {
		present[d] = struct{}{}
	}
	for _, s := range selected {
		if _, ok := present[s]; !ok {
			monitoring.Warnf("selected device %q not found in address table", s)
		}
	}
}
