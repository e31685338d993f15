package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil {
		t.Fatalf("expected non-nil DB when context provided")
	}
	if withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBaseTxRebinds(t *testing.T) {
	db := newTestDB(t)
	tx := db.Session(&gorm.Session{})
	if got := NewBase(db).Tx(tx).DB(nil); got != tx {
		t.Fatalf("expected tx-bound connection")
	}
}

func TestMapError(t *testing.T) {
	if err := MapError(nil, "x", "op"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := MapError(gorm.ErrRecordNotFound, "order not found", "load order"); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := MapError(errors.New("conn reset"), "x", "load order"); !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency, got %v", err)
	}
	if err := MapError(errors.New("UNIQUE constraint failed: discounts.code"), "x", "create discount"); !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	typed := pkgerrors.New(pkgerrors.CodeConflict, "taken")
	if err := MapError(typed, "x", "op"); err != typed {
		t.Fatalf("typed errors should pass through, got %v", err)
	}
}
