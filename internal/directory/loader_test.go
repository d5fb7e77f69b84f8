package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mdevolde/trace-analyzer/internal/config"
	"github.com/mdevolde/trace-analyzer/internal/fsutil"
)

const tableCSV = `id,device,mac
1,Laptop,AA:BB:CC:00:00:01
2,Phone,aa:bb:cc:00:00:02
3,Printer,AA-BB-CC-00-00-03
4,Broken
`

func TestLoadFile_CSV(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/tables/devices.csv", []byte(tableCSV))

	dir, err := LoadFile("/tables/devices.csv", LoadOptions{FS: mfs})
	require.NoError(t, err)

	assert.Equal(t, 3, dir.Len())
	device, ok := dir.Lookup("aa:bb:cc:00:00:01")
	assert.True(t, ok)
	assert.Equal(t, "Laptop", device)
	device, ok = dir.Lookup("aa:bb:cc:00:00:03")
	assert.True(t, ok)
	assert.Equal(t, "Printer", device)
}

func TestLoadFile_Selection(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/devices.csv", []byte(tableCSV))

	dir, err := LoadFile("/devices.csv", LoadOptions{FS: mfs, Selected: []string{"Phone", "Ghost"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Phone"}, dir.Devices())
	_, ok := dir.Lookup("aa:bb:cc:00:00:01")
	assert.False(t, ok)
}

func TestLoadFile_XLSX(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]interface{}{
		{"#", "Device", "MAC"},
		{1, "Camera", "DE:AD:BE:EF:00:01"},
		{2, "Thermostat", "de:ad:be:ef:00:02"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/devices.xlsx", buf.Bytes())

	dir, err := LoadFile("/devices.xlsx", LoadOptions{FS: mfs})
	require.NoError(t, err)

	assert.Equal(t, []string{"Camera", "Thermostat"}, dir.Devices())
	device, ok := dir.Lookup("DE:AD:BE:EF:00:02")
	assert.True(t, ok)
	assert.Equal(t, "Thermostat", device)
}

func TestLoadFile_Errors(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/devices.txt", []byte(tableCSV))
	mfs.WriteFile("/corrupt.xlsx", []byte("not a zip"))

	testCases := []struct {
		name string
		path string
	}{
		{"missing", "/absent.csv"},
		{"unsupported extension", "/devices.txt"},
		{"corrupt workbook", "/corrupt.xlsx"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFile(tc.path, LoadOptions{FS: mfs})
			assert.ErrorIs(t, err, ErrUnreadableTable)
		})
	}
}

func TestLoadFile_RejectDuplicates(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.WriteFile("/dup.csv", []byte("h,device,mac\n1,a,00:00:00:00:00:01\n2,b,00:00:00:00:00:01\n"))

	_, err := LoadFile("/dup.csv", LoadOptions{FS: mfs, DuplicatePolicy: config.DuplicateReject})
	assert.ErrorIs(t, err, ErrDuplicateAddress)
}

func TestEntries_SkipsHeaderAndBlankRows(t *testing.T) {
	rows := [][]string{
		{"id", "device", "mac"},
		{},
		{"1", "", "00:00:00:00:00:01"},
		{"2", "Hub", "00:00:00:00:00:02"},
	}
	assert.Equal(t, []Entry{{Device: "Hub", Address: "00:00:00:00:00:02"}}, Entries(rows, nil))
}
