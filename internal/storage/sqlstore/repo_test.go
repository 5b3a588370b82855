package sqlstore

import (
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
)

func TestStatements(t *testing.T) {
	for name, schema := range map[string]string{"mysql": schemaMySQL, "postgres": schemaPostgres} {
		stmts := statements(schema)
		if len(stmts) < 2 {
			t.Fatalf("%s: got %d statements", name, len(stmts))
		}
		if !strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS banks") {
			t.Fatalf("%s: first statement = %q", name, stmts[0])
		}
		for _, s := range stmts {
			if strings.HasSuffix(s, ";") {
				t.Fatalf("%s: statement keeps terminator: %q", name, s)
			}
		}
	}
}

func TestNew_Drivers(t *testing.T) {
	if _, err := New(nil, "sqlite"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	for _, d := range []string{DriverMySQL, DriverPostgres} {
		if _, err := New(nil, d); err != nil {
			t.Fatalf("%s: %v", d, err)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	cases := map[string]string{
		DriverMySQL:    "SELECT bank_id FROM banks WHERE bank_name = ?",
		DriverPostgres: "SELECT bank_id FROM banks WHERE bank_name = $1",
	}
	for driver, want := range cases {
		r, err := New(nil, driver)
		if err != nil {
			t.Fatal(err)
		}
		got, args, err := r.sb.Select("bank_id").From(tblBanks).Where(sq.Eq{"bank_name": "CBE"}).ToSql()
		if err != nil {
			t.Fatal(err)
		}
		if got != want || len(args) != 1 {
			t.Fatalf("%s: got %q %v", driver, got, args)
		}
	}
}

func TestInsertIfAbsent(t *testing.T) {
	my, _ := New(nil, DriverMySQL)
	q, _, err := my.sb.Insert(tblBanks).Options("IGNORE").Columns("bank_name").Values("CBE").ToSql()
	if err != nil {
		t.Fatal(err)
	}
	if q != "INSERT IGNORE INTO banks (bank_name) VALUES (?)" {
		t.Fatalf("mysql = %q", q)
	}
}

func TestNameMatches(t *testing.T) {
	cases := map[string]string{
		DriverMySQL:    "SELECT bank_id FROM banks WHERE LOWER(bank_name) = LOWER(?)",
		DriverPostgres: "SELECT bank_id FROM banks WHERE LOWER(bank_name) = LOWER($1)",
	}
	for driver, want := range cases {
		r, _ := New(nil, driver)
		got, args, err := r.sb.Select("bank_id").From(tblBanks).Where(nameMatches("bank_name", "cbe")).ToSql()
		if err != nil {
			t.Fatal(err)
		}
		if got != want || len(args) != 1 || args[0] != "cbe" {
			t.Fatalf("%s: got %q %v", driver, got, args)
		}
	}
}

func TestNormalizeDSN(t *testing.T) {
	got, err := normalizeDSN(DriverMySQL, "app:secret@tcp(db:3306)/bank_reviews")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := mysql.ParseDSN(got)
	if err != nil {
		t.Fatalf("rewritten dsn %q: %v", got, err)
	}
	if !cfg.ParseTime || cfg.Loc != time.UTC {
		t.Fatalf("parseTime=%v loc=%v in %q", cfg.ParseTime, cfg.Loc, got)
	}
	if cfg.User != "app" || cfg.Passwd != "secret" || cfg.Addr != "db:3306" || cfg.DBName != "bank_reviews" {
		t.Fatalf("connection fields lost: %+v", cfg)
	}

	pg := "postgres://u:p@localhost:5432/bank_reviews?sslmode=disable"
	if got, err := normalizeDSN(DriverPostgres, pg); err != nil || got != pg {
		t.Fatalf("postgres dsn changed: %q, %v", got, err)
	}

	if _, err := normalizeDSN(DriverMySQL, "not a dsn"); err == nil {
		t.Fatal("expected error for malformed mysql dsn")
	}
}
