package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/playperu/molkky/internal/molkky"
)

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry(4, NewBroker(), nil, slog.Default())

	table, err := reg.Create([]string{"Ana", "Bo"}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, c := range table.Code {
		if !strings.ContainsRune(codeChars, c) {
			t.Errorf("code %q has unexpected char %q", table.Code, c)
		}
	}

	got, err := reg.Get(table.Code)
	if err != nil || got != table {
		t.Fatalf("get: %v", err)
	}
	if _, err := reg.Get("ZZZZZZ"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !table.Authorized("anything") {
		t.Error("table without pin should accept any pin")
	}
}

func TestRegistryRejectsBadPlayerCount(t *testing.T) {
	reg := NewRegistry(1, NewBroker(), nil, slog.Default())

	if _, err := reg.Create([]string{"Solo"}, ""); !errors.Is(err, molkky.ErrPlayerCount) {
		t.Fatalf("expected ErrPlayerCount, got %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("expected no tables, got %d", reg.Len())
	}
}

func TestRegistryEvictsFinishedTables(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(1, NewBroker(), nil, slog.Default())

	first, err := reg.Create([]string{"Ana", "Bo"}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := reg.Create([]string{"Cy", "Di"}, ""); !errors.Is(err, ErrTooManyTables) {
		t.Fatalf("expected ErrTooManyTables, got %v", err)
	}
	if err := reg.Check(ctx); !errors.Is(err, ErrTooManyTables) {
		t.Errorf("expected full registry check to fail, got %v", err)
	}

	if _, err := first.Apply(ctx, Command{Op: OpEnd, Confirm: true}); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := reg.Check(ctx); err != nil {
		t.Errorf("expected room after game ended, got %v", err)
	}

	second, err := reg.Create([]string{"Cy", "Di"}, "")
	if err != nil {
		t.Fatalf("create after end: %v", err)
	}
	if _, err := reg.Get(first.Code); !errors.Is(err, ErrNotFound) {
		t.Errorf("finished table should be evicted, got %v", err)
	}
	if reg.Len() != 1 || second.Code == "" {
		t.Errorf("expected one table, got %d", reg.Len())
	}
}

func TestTablePin(t *testing.T) {
	reg := NewRegistry(4, NewBroker(), nil, slog.Default())

	table, err := reg.Create([]string{"Ana", "Bo"}, "2468")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if table.Authorized("") || table.Authorized("1357") {
		t.Error("wrong pin accepted")
	}
	if !table.Authorized("2468") {
		t.Error("right pin rejected")
	}
}

func TestTableApplyUnknownOp(t *testing.T) {
	reg := NewRegistry(4, NewBroker(), nil, slog.Default())
	table, _ := reg.Create([]string{"Ana", "Bo"}, "")

	if _, err := table.Apply(context.Background(), Command{Op: "dance"}); !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("expected ErrUnknownOp, got %v", err)
	}
}

func TestTableResultsFinal(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(4, NewBroker(), nil, slog.Default())
	table, _ := reg.Create([]string{"Ana", "Bo"}, "")

	res, final := table.Results()
	if final || len(res.Standings) != 0 {
		t.Fatalf("open game: final = %v, standings = %+v", final, res.Standings)
	}

	if _, err := table.Apply(ctx, Command{Op: OpThrow, Value: molkky.Points(6)}); err != nil {
		t.Fatalf("throw: %v", err)
	}
	if _, err := table.Apply(ctx, Command{Op: OpEnd, Confirm: true}); err != nil {
		t.Fatalf("end: %v", err)
	}

	res, final = table.Results()
	if !final {
		t.Fatal("expected final results after end")
	}
	if len(res.Standings) != 2 || res.Standings[0].Name != "Ana" || res.Standings[0].Total != 6 {
		t.Errorf("unexpected standings %+v", res.Standings)
	}
}
