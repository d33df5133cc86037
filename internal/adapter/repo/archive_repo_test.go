package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bganalyzer/internal/analysis"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (f fakeRow) Scan(dest ...any) error {
	return f.scan(dest...)
}

type fakeDB struct {
	exec     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRow func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.exec(ctx, sql, args...)
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.queryRow(ctx, sql, args...)
}

func testRecord() *analysis.Record {
	return &analysis.Record{
		Meta:     analysis.Meta{Width: 10, Height: 10, Format: "PNG"},
		Category: analysis.CategoryInfo{Location: 1, Era: 2},
		Annotation: analysis.AnnotationFields{
			Scene: "장면이다.", Colortone: "색감이다.", Composition: "구도이다.",
			Object1: "객체 하나다.", Object2: "객체 둘이다.", Explanation: "설명이다.",
		},
	}
}

func TestFileHashIsStable(t *testing.T) {
	first := FileHash([]byte("image bytes"))
	second := FileHash([]byte("image bytes"))
	if first != second {
		t.Fatal("FileHash is not deterministic")
	}
	if len(first) != 64 {
		t.Fatalf("FileHash length = %d, want 64 hex chars", len(first))
	}
	if FileHash([]byte("other bytes")) == first {
		t.Fatal("distinct inputs produced the same hash")
	}
}

func TestSaveInsertsRecordJSON(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	db := &fakeDB{
		exec: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			gotSQL = sql
			gotArgs = args
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}
	r := NewArchiveRepository(db)

	id, err := r.Save(context.Background(), "abc123", testRecord())
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if id == "" {
		t.Fatal("Save returned empty id")
	}
	if !strings.Contains(gotSQL, "INSERT INTO analyses") {
		t.Fatalf("unexpected SQL: %s", gotSQL)
	}
	if len(gotArgs) != 3 || gotArgs[1] != "abc123" {
		t.Fatalf("unexpected args: %#v", gotArgs)
	}
	var decoded analysis.Record
	if err := json.Unmarshal(gotArgs[2].([]byte), &decoded); err != nil {
		t.Fatalf("record payload is not valid JSON: %v", err)
	}
	if decoded.Category.Era != 2 {
		t.Fatalf("decoded record = %+v", decoded)
	}
}

func TestSaveMapsUniqueViolationToErrDuplicate(t *testing.T) {
	db := &fakeDB{
		exec: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}
		},
	}
	r := NewArchiveRepository(db)

	_, err := r.Save(context.Background(), "abc123", testRecord())
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("error = %v, want ErrDuplicate", err)
	}
}

func TestExists(t *testing.T) {
	db := &fakeDB{
		queryRow: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return fakeRow{scan: func(dest ...any) error {
				*(dest[0].(*string)) = "some-id"
				return nil
			}}
		},
	}
	r := NewArchiveRepository(db)
	ok, err := r.Exists(context.Background(), "abc123")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v, want true, nil", ok, err)
	}

	db.queryRow = func(ctx context.Context, sql string, args ...any) pgx.Row {
		return fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
	}
	ok, err = r.Exists(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("Exists = %v, %v, want false, nil", ok, err)
	}
}
