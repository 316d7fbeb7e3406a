package jobstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// scriptedDB routes statements by substring so store methods can run
// without a live pool.
type scriptedDB struct {
	queryRow func(sql string) pgx.Row
	exec     func(sql string) (pgconn.CommandTag, error)
	query    func(sql string) (pgx.Rows, error)
}

func (db *scriptedDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if db.exec != nil {
		return db.exec(sql)
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (db *scriptedDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	if db.query != nil {
		return db.query(sql)
	}
	return nil, errors.New("unscripted query: " + sql)
}

func (db *scriptedDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	if db.queryRow != nil {
		return db.queryRow(sql)
	}
	return rowFunc(func(...any) error { return errors.New("unscripted queryRow: " + sql) })
}

type rowFunc func(dest ...any) error

func (r rowFunc) Scan(dest ...any) error { return r(dest...) }

// scriptedRows yields n rows, each filled by scan.
type scriptedRows struct {
	n    int
	scan func(dest ...any) error
}

func (r *scriptedRows) Close()                                       {}
func (r *scriptedRows) Err() error                                   { return nil }
func (r *scriptedRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *scriptedRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *scriptedRows) Next() bool                                   { r.n--; return r.n >= 0 }
func (r *scriptedRows) Scan(dest ...any) error                       { return r.scan(dest...) }
func (r *scriptedRows) Values() ([]any, error)                       { return nil, nil }
func (r *scriptedRows) RawValues() [][]byte                          { return nil }
func (r *scriptedRows) Conn() *pgx.Conn                              { return nil }

// A failed saved-job advance must not fail the apply: the application row
// is already committed, and reporting an error would leave the client with
// a 500 now and a duplicate-application conflict on retry.
func TestApply_SavedJobAdvanceFailureDoesNotFailApply(t *testing.T) {
	db := &scriptedDB{
		queryRow: func(sql string) pgx.Row {
			switch {
			case strings.Contains(sql, "FROM jobs"):
				return rowFunc(func(...any) error { return nil })
			case strings.Contains(sql, "SELECT id FROM applications"):
				return rowFunc(func(...any) error { return pgx.ErrNoRows })
			case strings.Contains(sql, "INSERT INTO applications"):
				return rowFunc(func(dest ...any) error {
					*dest[0].(*string) = "app-1"
					*dest[5].(*string) = "applied"
					return nil
				})
			}
			return rowFunc(func(...any) error { return errors.New("unscripted: " + sql) })
		},
		exec: func(sql string) (pgconn.CommandTag, error) {
			if strings.Contains(sql, "UPDATE saved_jobs") {
				return pgconn.CommandTag{}, errors.New("deadlock detected")
			}
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}

	s := &Store{pool: db}
	app, err := s.Apply(context.Background(), "user-1", "j1", "", "", "")
	if err != nil {
		t.Fatalf("apply returned error after committing: %v", err)
	}
	if app == nil || app.ID != "app-1" {
		t.Fatalf("application = %+v, want committed row", app)
	}
	if app.Status != "applied" {
		t.Errorf("status = %q, want applied", app.Status)
	}
}

// A saved entry whose linked job row is gone still ships, just without the
// embed.
func TestListSaved_MissingJobRowKeptWithoutEmbed(t *testing.T) {
	db := &scriptedDB{
		queryRow: func(sql string) pgx.Row {
			switch {
			case strings.Contains(sql, "COUNT(*) FROM saved_jobs"):
				return rowFunc(func(dest ...any) error {
					*dest[0].(*int) = 1
					return nil
				})
			case strings.Contains(sql, "FROM jobs"):
				return rowFunc(func(...any) error { return pgx.ErrNoRows })
			}
			return rowFunc(func(...any) error { return errors.New("unscripted: " + sql) })
		},
		query: func(sql string) (pgx.Rows, error) {
			return &scriptedRows{n: 1, scan: func(dest ...any) error {
				*dest[0].(*string) = "s1"
				*dest[1].(*string) = "user-1"
				*dest[2].(*string) = "gone"
				return nil
			}}, nil
		},
	}

	s := &Store{pool: db}
	saved, total, err := s.ListSaved(context.Background(), "user-1", "", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(saved) != 1 {
		t.Fatalf("total=%d len=%d, want 1/1", total, len(saved))
	}
	if saved[0].ID != "s1" {
		t.Errorf("saved ID = %q, want s1", saved[0].ID)
	}
	if saved[0].Job != nil {
		t.Error("missing job row must not produce an embed")
	}
}
