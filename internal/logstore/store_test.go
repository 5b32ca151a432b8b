package logstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"device_monitor/internal/models"
)

func testReading(n int) models.Reading {
	return models.Reading{
		Timestamp: fmt.Sprintf("2026-08-31T12:00:%02dZ", n),
		Voltage:   "V_12V",
		Current:   "A_1A",
		Serial:    "S_DSA123",
		Status:    models.StatusOK,
	}
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "device_data.json")
	s := New(path, 0, 3)

	const n = 5
	for i := 0; i < n; i++ {
		if err := s.Append(testReading(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got := s.Readings()
	if len(got) != n {
		t.Fatalf("len = %d, want %d", len(got), n)
	}
	for i, r := range got {
		if r.Timestamp != testReading(i).Timestamp {
			t.Errorf("record %d out of order: %q", i, r.Timestamp)
		}
	}

	// The on-disk document must be a plain JSON array.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("file is not a JSON array: %v", err)
	}
}

func TestStore_AppendResetsCorruptFile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{"truncated json", `[{"timestamp": "2026-`},
		{"not an array", `{"timestamp": "x"}`},
		{"garbage", "not json at all"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "device_data.json")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("seed file: %v", err)
			}

			s := New(path, 0, 3)
			if err := s.Append(testReading(0)); err != nil {
				t.Fatalf("append over corrupt file: %v", err)
			}

			got := s.Readings()
			if len(got) != 1 {
				t.Fatalf("len = %d, want 1 (corrupt content must be dropped)", len(got))
			}
		})
	}
}

func TestStore_RotateShiftsChain(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "device_data.json")
	s := New(path, 0, 3)

	seed := map[string]string{
		path:        "live",
		path + ".1": "one",
		path + ".2": "two",
		path + ".3": "three",
	}
	for p, content := range seed {
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("seed %s: %v", p, err)
		}
	}

	if err := s.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	// Live file is gone until the next write.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("live file must not exist after rotation")
	}

	wantContent := map[string]string{
		path + ".1": "live",
		path + ".2": "one",
		path + ".3": "two",
	}
	for p, want := range wantContent {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", p, data, want)
		}
	}

	// The old .3 was the oldest and is dropped; nothing beyond .3 exists.
	if _, err := os.Stat(path + ".4"); !os.IsNotExist(err) {
		t.Error("chain must not grow past maxFiles")
	}
}

func TestStore_RotateToleratesGaps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "device_data.json")
	s := New(path, 0, 3)

	// Only the live file and .2 exist.
	if err := os.WriteFile(path, []byte("live"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path+".2", []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	for p, want := range map[string]string{
		path + ".1": "live",
		path + ".3": "two",
	} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", p, data, want)
		}
	}
}

func TestStore_AppendRotatesPastThreshold(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "device_data.json")
	s := New(path, 64, 3) // tiny threshold: one record is enough to exceed it

	if err := s.Append(testReading(0)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(testReading(1)); err != nil {
		t.Fatalf("append: %v", err)
	}

	// The first append grew the file past 64 bytes, so the second one must
	// have rotated it away before writing.
	rotated := New(path+".1", 0, 0)
	if got := rotated.Readings(); len(got) != 1 || got[0].Timestamp != testReading(0).Timestamp {
		t.Fatalf("rotated file: got %d records, want the first reading", len(got))
	}
	if got := s.Readings(); len(got) != 1 || got[0].Timestamp != testReading(1).Timestamp {
		t.Fatalf("live file: got %d records, want only the second reading", len(got))
	}
}
