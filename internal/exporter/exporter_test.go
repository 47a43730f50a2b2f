package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"netmobcli/internal/catalog"
	"netmobcli/internal/config"
	"netmobcli/internal/cube"
	"netmobcli/internal/night"
)

func setupTestEnv(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()
	root := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{
		DataDir:      filepath.Join(root, "data"),
		GeoDir:       filepath.Join(root, "geo"),
		OutputDir:    filepath.Join(root, "output"),
		MatchingFile: "matching.csv",
		ZonesFile:    "iris.geojson",
	})
	return NewCSVWriter(paths, nil), paths
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func sampleTable() cube.Table {
	tbl := cube.NewTable([]string{"Z1", "Z2"}, []string{"total"})
	tbl.Values[0][0] = 12.5
	tbl.Values[1][0] = 3
	return tbl
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, paths := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		wantPath string
		want     []string
	}{
		{
			name:     "reports by default",
			filePath: "plain.csv",
			options:  WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}}},
			wantPath: filepath.Join(paths.ReportsDir, "plain.csv"),
			want:     []string{"a,b", "1,2"},
		},
		{
			name:     "output prefix",
			filePath: "output/series/out.csv",
			options:  WriteOptions{Headers: []string{"a"}, Records: [][]string{{"x"}, {"y"}}},
			wantPath: filepath.Join(paths.OutputDir, "series", "out.csv"),
			want:     []string{"a", "x", "y"},
		},
		{
			name:     "bom prefix",
			filePath: "bom.csv",
			options:  WriteOptions{Headers: []string{"a"}, BOMPrefix: true},
			wantPath: filepath.Join(paths.ReportsDir, "bom.csv"),
			want:     []string{"\ufeffa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, writer.WriteCSV(tt.filePath, tt.options))
			assert.Equal(t, tt.want, readLines(t, tt.wantPath))
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	writer, paths := setupTestEnv(t)

	require.NoError(t, writer.WriteSimpleCSV("log.csv", []string{"h"}, [][]string{{"1"}}))
	require.NoError(t, writer.WriteCSV("log.csv", WriteOptions{Headers: []string{"h"}, Records: [][]string{{"2"}}, Append: true}))

	assert.Equal(t, []string{"h", "1", "2"}, readLines(t, filepath.Join(paths.ReportsDir, "log.csv")))
}

func TestCSVWriter_WriteTable(t *testing.T) {
	writer, paths := setupTestEnv(t)

	tbl := sampleTable()
	tbl.Values[1][0] = math.NaN()
	require.NoError(t, writer.WriteTable("night_Lyon.csv", tbl))

	assert.Equal(t, []string{"location,total", "Z1,12.5", "Z2,"}, readLines(t, filepath.Join(paths.ReportsDir, "night_Lyon.csv")))
}

func TestCSVWriter_WriteProfile(t *testing.T) {
	writer, paths := setupTestEnv(t)

	day := catalog.Date(2019, time.April, 2)
	c := cube.Generate(catalog.Downlink, cube.Axes{
		Locations: []string{"Z1"},
		Times:     []catalog.TimeOfDay{catalog.At(0, 0), catalog.At(23, 0)},
		Services:  []string{"Netflix"},
		Days:      []time.Time{day, day.AddDate(0, 0, 1)},
	}, func(l, ti, s, d int) float64 { return float64(ti + 1) })

	p := night.TimeOfDayProfile(night.SelectWindow(c.Flatten(), catalog.At(23, 0), catalog.At(1, 0)))
	require.NoError(t, writer.WriteProfile("profile.csv", p))

	assert.Equal(t, []string{
		"location,time,service,value",
		"Z1,23:00,Netflix,2",
		"Z1,00:00,Netflix,1",
	}, readLines(t, filepath.Join(paths.ReportsDir, "profile.csv")))
}

func TestStreamWriter(t *testing.T) {
	writer, paths := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"id", "v"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, stream.WriteRecord([]string{"r", formatFloat(float64(i) / 2)}))
	}
	require.NoError(t, stream.Close())

	assert.Equal(t, []string{"id,v", "r,0", "r,0.5", "r,1"}, readLines(t, filepath.Join(paths.ReportsDir, "stream.csv")))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "13.4", formatFloat(13.4))
	assert.Equal(t, "1250000", formatFloat(1.25e6))
	assert.Equal(t, "", formatFloat(math.NaN()))
}

func TestXLSXWriter_WriteWorkbook(t *testing.T) {
	writer, paths := setupTestEnv(t)
	x := NewXLSXWriter(writer)

	second := cube.NewTable([]string{"T1"}, []string{"Netflix", "total"})
	second.Values[0] = []float64{1, 2}

	require.NoError(t, x.WriteWorkbook("night.xlsx",
		Sheet{Name: "Lyon", Table: sampleTable()},
		Sheet{Name: "Paris", Table: second},
	))

	f, err := excelize.OpenFile(filepath.Join(paths.ReportsDir, "night.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Lyon", "Paris"}, f.GetSheetList())
	assert.Equal(t, 0, f.GetActiveSheetIndex())

	rows, err := f.GetRows("Lyon")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"location", "total"}, {"Z1", "12.5"}, {"Z2", "3"}}, rows)

	rows, err = f.GetRows("Paris")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"location", "Netflix", "total"}, {"T1", "1", "2"}}, rows)
}

func TestXLSXWriter_NoSheets(t *testing.T) {
	writer, _ := setupTestEnv(t)
	assert.Error(t, NewXLSXWriter(writer).WriteWorkbook("empty.xlsx"))
}
