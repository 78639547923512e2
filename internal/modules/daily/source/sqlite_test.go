package source

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"

	"cloudpico-dailyagg/internal/modules/daily"
)

// Minimal schema matching the cloudpico readings store.
const testSchema = `
CREATE TABLE IF NOT EXISTS stations (
  id         INTEGER PRIMARY KEY,
  name       TEXT    NOT NULL,
  created_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
  metadata   TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_stations_name ON stations(name);

CREATE TABLE IF NOT EXISTS readings (
  station_id      INTEGER NOT NULL,
  ts              TEXT    NOT NULL,
  temperature_c   REAL,
  humidity_pct    REAL,
  pressure_hpa    REAL,
  PRIMARY KEY (station_id, ts),
  FOREIGN KEY (station_id) REFERENCES stations(id) ON UPDATE CASCADE ON DELETE CASCADE
);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO stations (id, name) VALUES (1, 'Alpha'), (2, 'Beta')`); err != nil {
		t.Fatalf("insert stations: %v", err)
	}
	return db
}

func readAll(t *testing.T, src *SQLiteSource) [][]string {
	t.Helper()
	var out [][]string
	for {
		rec, err := src.Read()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		out = append(out, rec)
	}
}

func TestSQLiteSource_Empty(t *testing.T) {
	db := setupTestDB(t)
	src, err := NewSQLiteSource(context.Background(), db, nil)
	if err != nil {
		t.Fatalf("NewSQLiteSource: %v", err)
	}
	defer func() { _ = src.Close() }()

	got := readAll(t, src)
	if diff := cmp.Diff([][]string{Header}, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if src.Count() != 0 {
		t.Errorf("Count() = %d, want 0", src.Count())
	}
}

func TestSQLiteSource_Records(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Exec(`
		INSERT INTO readings (station_id, ts, temperature_c, humidity_pct) VALUES
		(1, '2025-02-01T13:00:00Z', 11.5, 40),
		(2, '2025-02-01T00:00:00.250Z', -3, NULL),
		(1, '2025-02-01T09:30:15Z', NULL, 55),
		(1, '2025-02-01T08:00:00Z', 10, NULL)
	`)
	if err != nil {
		t.Fatalf("insert readings: %v", err)
	}

	src, err := NewSQLiteSource(context.Background(), db, time.UTC)
	if err != nil {
		t.Fatalf("NewSQLiteSource: %v", err)
	}
	defer func() { _ = src.Close() }()

	want := [][]string{
		Header,
		{"Alpha", "02/01/2025 01:00:00 PM", "11.5"},
		{"Beta", "02/01/2025 12:00:00 AM", "-3"},
		{"Alpha", "02/01/2025 08:00:00 AM", "10"},
	}
	if diff := cmp.Diff(want, readAll(t, src)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if src.Count() != 3 {
		t.Errorf("Count() = %d, want 3", src.Count())
	}
}

func TestSQLiteSource_LocalDays(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Exec(`
		INSERT INTO readings (station_id, ts, temperature_c) VALUES
		(1, '2016-12-31T03:00:00Z', -1.5),
		(1, '2016-12-31T05:00:00Z', -2),
		(1, '2016-12-31T07:00:00Z', 0.5)
	`)
	if err != nil {
		t.Fatalf("insert readings: %v", err)
	}
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	src, err := NewSQLiteSource(context.Background(), db, chicago)
	if err != nil {
		t.Fatalf("NewSQLiteSource: %v", err)
	}
	defer func() { _ = src.Close() }()

	var out strings.Builder
	w := csv.NewWriter(&out)
	if err := daily.ProcessRecords(src, w); err != nil {
		t.Fatalf("ProcessRecords: %v", err)
	}
	w.Flush()

	want := "Station Name,Date,Min Temp,Max Temp,First Temp,Last Temp\n" +
		"Alpha,12/30/2016,-2,-1.5,-1.5,-2\n" +
		"Alpha,12/31/2016,0.5,0.5,0.5,0.5\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestSQLiteSource_BadTimestamp(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.Exec(`INSERT INTO readings (station_id, ts, temperature_c) VALUES (1, 'yesterday', 1)`); err != nil {
		t.Fatalf("insert reading: %v", err)
	}
	src, err := NewSQLiteSource(context.Background(), db, nil)
	if err != nil {
		t.Fatalf("NewSQLiteSource: %v", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := src.Read(); err != nil {
		t.Fatalf("header Read: %v", err)
	}
	if _, err := src.Read(); err == nil {
		t.Fatal("Read() error = nil, want parse error")
	}
}

func TestNewSQLiteSource_MissingSchema(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := NewSQLiteSource(context.Background(), db, nil); err == nil {
		t.Fatal("NewSQLiteSource() error = nil, want non-nil")
	}
}
