package progress

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestIDsFromCSV(t *testing.T) {
	csv := `"Id","Original","Translation"
"12","Greetings.","Gruesse."
"3","Farewell.","Lebewohl."
"12","Duplicate row",""
not a csv line
`
	got, err := IDsFromCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("IDsFromCSV() error = %v", err)
	}
	if want := []int{3, 12}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDsFromCSV() = %v, want %v", got, want)
	}
}

func TestIDsFromTXT(t *testing.T) {
	txt := `StringRef: 55 'Some unused line'
StringRef: 7 'Another one'
Unrelated: 99
`
	got, err := IDsFromTXT(strings.NewReader(txt))
	if err != nil {
		t.Fatalf("IDsFromTXT() error = %v", err)
	}
	if want := []int{7, 55}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDsFromTXT() = %v, want %v", got, want)
	}
}

func TestNewSnapshotMergesStates(t *testing.T) {
	snap := NewSnapshot([]int{1, 2, 3, 4}, []int{2, 99}, []int{3, 98})

	if got := snap.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
	if snap.States[1] != Accepted {
		t.Errorf("state(1) = %v, want accepted", snap.States[1])
	}
	if snap.States[2]&Accepted != 0 || snap.States[2]&OutOfDate == 0 {
		t.Errorf("state(2) = %v, want out-of-date without accepted", snap.States[2])
	}
	if snap.States[3] != Accepted|Unused {
		t.Errorf("state(3) = %v, want accepted and unused", snap.States[3])
	}
	// 99 and 98 are not project strings.
	if _, ok := snap.States[99]; ok {
		t.Error("out-of-date-only ID 99 must not join the snapshot")
	}
	if got := snap.Count(Accepted); got != 3 {
		t.Errorf("Count(Accepted) = %d, want 3", got)
	}
}

func TestPaintPNGNewChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.png")
	// 12 strings: rows 0 (IDs 1-10, all accepted) and 1 (IDs 11-12, one
	// out of date).
	complete := make([]int, 0, 12)
	for id := 1; id <= 12; id++ {
		complete = append(complete, id)
	}
	snap := NewSnapshot(complete, []int{11}, nil)

	if err := PaintPNG(path, snap); err != nil {
		t.Fatalf("PaintPNG() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if img.Bounds().Dx() != columnWidth || img.Bounds().Dy() != 2 {
		t.Fatalf("chart bounds = %v, want %dx2", img.Bounds(), columnWidth)
	}
	if r, g, _, _ := img.At(0, 0).RGBA(); r != 0 || g == 0 {
		t.Errorf("row 0 = %v, want green", img.At(0, 0))
	}
	if r, g, _, _ := img.At(0, 1).RGBA(); r == 0 || g != 0 {
		t.Errorf("row 1 = %v, want red", img.At(0, 1))
	}
}

func TestPaintPNGExtendsChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.png")
	snap := NewSnapshot([]int{1, 2}, nil, nil)

	if err := PaintPNG(path, snap); err != nil {
		t.Fatalf("first PaintPNG() error = %v", err)
	}
	if err := PaintPNG(path, snap); err != nil {
		t.Fatalf("second PaintPNG() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if got, want := img.Bounds().Dx(), 2*columnWidth+1; got != want {
		t.Errorf("extended chart width = %d, want %d", got, want)
	}
	// The separator column between the two runs is black.
	if r, g, b, _ := img.At(columnWidth, 0).RGBA(); r != 0 || g != 0 || b != 0 {
		t.Errorf("separator pixel = %v, want black", img.At(columnWidth, 0))
	}
}

func TestAppendTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")
	snap := NewSnapshot([]int{1, 2, 3, 4}, []int{4}, nil)
	now := time.Date(2017, 8, 26, 0, 0, 0, 0, time.UTC)

	if err := AppendTable(path, snap, 1, false, now); err != nil {
		t.Fatalf("AppendTable() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want header, separator and one row:\n%s", len(lines), data)
	}
	if lines[0] != tableHeader {
		t.Errorf("header = %q, want %q", lines[0], tableHeader)
	}
	// 3 accepted of 4, 1 suggested: (1 + 2*3) / (2*4) = 87%.
	row := lines[2]
	if !strings.HasPrefix(row, "2017-08-26") || !strings.HasSuffix(row, "87%") {
		t.Errorf("row = %q, want date prefix and 87%% progress", row)
	}

	// A second run appends below the first row.
	if err := AppendTable(path, snap, 1, false, now); err != nil {
		t.Fatalf("second AppendTable() error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if got := strings.Count(string(data), "2017-08-26"); got != 2 {
		t.Errorf("table has %d rows, want 2", got)
	}
}

func TestAppendTableIgnoreUnused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")
	// 4 strings, 2 unused, both unused also accepted; 2 accepted total.
	snap := NewSnapshot([]int{1, 2, 3, 4}, []int{1, 2}, []int{3, 4})

	if err := AppendTable(path, snap, 0, true, time.Now()); err != nil {
		t.Fatalf("AppendTable() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	// Denominator shrinks to 2, accepted is 2: 2*2/(2*2) = 100%.
	if !strings.Contains(string(data), "100%") {
		t.Errorf("table = %s, want 100%% progress", data)
	}
}
