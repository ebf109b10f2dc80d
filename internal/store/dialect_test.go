package store

import (
	"reflect"
	"testing"

	"formrules/internal/metadata"
)

func TestNewDialect(t *testing.T) {
	if NewDialect("sqlite").Name() != "sqlite" {
		t.Fatal("expected sqlite dialect")
	}
	if NewDialect("postgres").Name() != "postgres" {
		t.Fatal("expected postgres dialect")
	}
	if NewDialect("").Name() != "postgres" {
		t.Fatal("expected postgres as default dialect")
	}
}

func TestParamBuilders(t *testing.T) {
	pg := NewDialect("postgres").NewParamBuilder()
	if ph := pg.Add("a"); ph != "$1" {
		t.Fatalf("expected $1, got %s", ph)
	}
	if ph := pg.Add(2); ph != "$2" {
		t.Fatalf("expected $2, got %s", ph)
	}
	if pg.Count() != 2 || !reflect.DeepEqual(pg.Params(), []any{"a", 2}) {
		t.Fatalf("unexpected params: %v", pg.Params())
	}

	lite := NewDialect("sqlite").NewParamBuilder()
	if ph := lite.Add("a"); ph != "?1" {
		t.Fatalf("expected ?1, got %s", ph)
	}
}

func TestPostgresAnswerExpr(t *testing.T) {
	d := &PostgresDialect{}
	tests := []struct {
		t    metadata.StoreDataType
		want string
	}{
		{metadata.StoreString, "data->>$1::text"},
		{metadata.StoreNumber, "(data->>$1::text)::numeric"},
		{metadata.StoreBoolean, "(data->>$1::text)::boolean"},
		{metadata.StoreList, "data->$1::text"},
	}
	for _, tt := range tests {
		pb := d.NewParamBuilder()
		if got := d.AnswerExpr("data", "age", tt.t, pb); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.t, tt.want, got)
		}
		if pb.Params()[0] != "age" {
			t.Fatalf("expected field id as param, got %v", pb.Params())
		}
	}
}

func TestSQLiteAnswerExpr(t *testing.T) {
	d := &SQLiteDialect{}
	pb := d.NewParamBuilder()
	got := d.AnswerExpr("data", "age", metadata.StoreNumber, pb)
	if got != "CAST(json_extract(data, ?1) AS REAL)" {
		t.Fatalf("unexpected expr: %s", got)
	}
	if pb.Params()[0] != `$."age"` {
		t.Fatalf("unexpected path param: %v", pb.Params()[0])
	}

	pb = d.NewParamBuilder()
	if got := d.AnswerExpr("data", "name", metadata.StoreString, pb); got != "json_extract(data, ?1)" {
		t.Fatalf("unexpected expr: %s", got)
	}
}

func TestListContainsExpr(t *testing.T) {
	pg := &PostgresDialect{}
	pb := pg.NewParamBuilder()
	got := pg.ListContainsExpr("data", "skills", pb, "go")
	if got != "data->$1::text @> jsonb_build_array($2::text)" {
		t.Fatalf("unexpected postgres expr: %s", got)
	}
	if !reflect.DeepEqual(pb.Params(), []any{"skills", "go"}) {
		t.Fatalf("unexpected params: %v", pb.Params())
	}

	lite := &SQLiteDialect{}
	pb = lite.NewParamBuilder()
	got = lite.ListContainsExpr("data", "skills", pb, "go")
	if got != "EXISTS (SELECT 1 FROM json_each(data, ?1) WHERE value = ?2)" {
		t.Fatalf("unexpected sqlite expr: %s", got)
	}
}

func TestInExpr(t *testing.T) {
	pg := &PostgresDialect{}
	pb := pg.NewParamBuilder()
	if got := pg.InExpr("x", pb, []any{"a", "b"}); got != "x = ANY($1)" {
		t.Fatalf("unexpected postgres IN: %s", got)
	}
	if got := pg.NotInExpr("x", pb, []any{"a"}); got != "x != ALL($2)" {
		t.Fatalf("unexpected postgres NOT IN: %s", got)
	}

	lite := &SQLiteDialect{}
	pb = lite.NewParamBuilder()
	if got := lite.InExpr("x", pb, []any{"a", "b"}); got != "x IN (?1, ?2)" {
		t.Fatalf("unexpected sqlite IN: %s", got)
	}
	if got := lite.NotInExpr("x", pb, []any{"c"}); got != "x NOT IN (?3)" {
		t.Fatalf("unexpected sqlite NOT IN: %s", got)
	}
	if got := lite.InExpr("x", pb, nil); got != "0" {
		t.Fatalf("expected constant false for empty IN, got %s", got)
	}
}

func TestColumnType(t *testing.T) {
	if got := (&PostgresDialect{}).ColumnType(metadata.StoreList); got != "TEXT[]" {
		t.Fatalf("unexpected postgres list type: %s", got)
	}
	if got := (&SQLiteDialect{}).ColumnType(metadata.StoreBoolean); got != "INTEGER" {
		t.Fatalf("unexpected sqlite bool type: %s", got)
	}
	if got := (&PostgresDialect{}).ColumnType(metadata.StoreNone); got != "" {
		t.Fatalf("expected no column for NONE, got %s", got)
	}
}
