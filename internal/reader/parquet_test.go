package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"csvql/internal/types"
)

type parquetRow struct {
	ID     int64   `parquet:"id"`
	Name   string  `parquet:"name"`
	Active bool    `parquet:"active"`
	Score  float64 `parquet:"score"`
}

func writeParquet(t *testing.T, rows []parquetRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.parquet")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	writer := parquet.NewGenericWriter[parquetRow](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write fixture rows: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close fixture: %v", err)
	}
	return path
}

func TestOpenParquet_Schema(t *testing.T) {
	path := writeParquet(t, []parquetRow{
		{ID: 1, Name: "alice", Active: true, Score: 9.5},
	})

	rel, err := OpenParquet(path)
	if err != nil {
		t.Fatalf("OpenParquet returned error: %v", err)
	}
	if rel.Name() != "data" {
		t.Errorf("Name() = %q, want %q", rel.Name(), "data")
	}

	schema := rel.Schema()
	wantTypes := map[string]types.DataType{
		"id":     types.Integer,
		"name":   types.Text,
		"active": types.Boolean,
		"score":  types.Float,
	}
	for name, want := range wantTypes {
		idx, ok := schema.Index(name)
		if !ok {
			t.Errorf("schema missing column %q", name)
			continue
		}
		if got := schema.Column(idx).Type; got != want {
			t.Errorf("column %q type = %s, want %s", name, got, want)
		}
	}
}

func TestParquetSource_Rows(t *testing.T) {
	path := writeParquet(t, []parquetRow{
		{ID: 1, Name: "alice", Active: true, Score: 9.5},
		{ID: 2, Name: "bob", Active: false, Score: 7.0},
	})

	rel, err := OpenParquet(path)
	if err != nil {
		t.Fatalf("OpenParquet returned error: %v", err)
	}
	src, err := rel.Open()
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	var rows []types.Row
	for {
		row, err := src.Next()
		if err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	schema := rel.Schema()
	idIdx, _ := schema.Index("id")
	nameIdx, _ := schema.Index("name")
	if rows[0][idIdx] != types.NewInt(1) {
		t.Errorf("row 0 id = %v, want 1", rows[0][idIdx])
	}
	if rows[1][nameIdx] != types.NewText("bob") {
		t.Errorf("row 1 name = %v, want bob", rows[1][nameIdx])
	}

	if row, err := src.Next(); row != nil || err != nil {
		t.Errorf("Next after exhaustion = %v, %v, want nil, nil", row, err)
	}
}

func TestOpenParquet_NotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.parquet")
	if err := os.WriteFile(path, []byte("not parquet"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := OpenParquet(path); err == nil {
		t.Fatal("expected error for invalid parquet file")
	}
}

func TestOpen_DispatchesParquet(t *testing.T) {
	path := writeParquet(t, []parquetRow{{ID: 1, Name: "x"}})

	rel, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, ok := rel.(*ParquetRelation); !ok {
		t.Errorf("Open returned %T, want *ParquetRelation", rel)
	}
}
