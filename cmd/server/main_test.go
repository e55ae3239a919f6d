package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/store"
)

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("create table if not exists predictions").
		WillReturnError(errors.New("permission denied"))

	err = migrate(store.NewRecordRepo(db))
	if err == nil || !strings.Contains(err.Error(), "failed to migrate database: permission denied") {
		t.Fatalf("err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenDB_BadDSN(t *testing.T) {
	if db, err := openDB("postgres://%zz"); err == nil {
		db.Close()
		t.Fatal("expected error for malformed DSN")
	}
}
