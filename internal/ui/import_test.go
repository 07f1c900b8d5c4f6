package ui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/javiermolinar/vendas/internal/db"
	"github.com/javiermolinar/vendas/internal/sales"
)

func TestImportData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.db")
	destPath := filepath.Join(dir, "dest.db")

	sourceRepo, err := db.New(sourcePath)
	if err != nil {
		t.Fatalf("creating source repo: %v", err)
	}
	defer func() { _ = sourceRepo.Close() }()

	// Created in reverse dependency order to check supervisors import first.
	sup := &sales.Actor{ID: "sup", Name: "Carla", Role: sales.RoleSupervisor, Active: true, CreatedAt: time.Now()}
	supID := sup.ID
	seller := &sales.Actor{ID: "sp", Name: "Bruno", Role: sales.RoleSalesperson, SupervisorID: &supID, Active: true, CreatedAt: time.Now().Add(-time.Hour)}
	for _, a := range []*sales.Actor{seller, sup} {
		if err := sourceRepo.CreateActor(ctx, a); err != nil {
			t.Fatalf("CreateActor failed: %v", err)
		}
	}

	at := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	sale, err := sales.NewSale(seller.ID, decimal.NewFromInt(250), at)
	if err != nil {
		t.Fatal(err)
	}
	sale.Outcome = sales.OutcomeApproved
	if err := sourceRepo.CreateRecord(ctx, sale); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	destRepo, err := db.New(destPath)
	if err != nil {
		t.Fatalf("creating destination repo: %v", err)
	}
	defer func() { _ = destRepo.Close() }()

	res, err := importData(ctx, destRepo, sourcePath)
	if err != nil {
		t.Fatalf("importData failed: %v", err)
	}
	if res.Actors != 2 || res.Records != 1 || res.Skipped != 0 {
		t.Errorf("got %+v, want 2 actors, 1 record, 0 skipped", res)
	}

	got, err := destRepo.GetRecord(ctx, sale.ID)
	if err != nil {
		t.Fatalf("imported record missing: %v", err)
	}
	if got.Outcome != sales.OutcomeApproved || !got.Value.Equal(decimal.NewFromInt(250)) {
		t.Errorf("imported record differs: %+v", got)
	}
	gotSeller, err := destRepo.GetActor(ctx, seller.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotSeller.SupervisorID == nil || *gotSeller.SupervisorID != sup.ID {
		t.Error("supervisor reference lost on import")
	}

	// A second import copies nothing.
	res, err = importData(ctx, destRepo, sourcePath)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if res.Actors != 0 || res.Records != 0 || res.Skipped != 3 {
		t.Errorf("got %+v, want everything skipped", res)
	}
}

func TestResolvePath(t *testing.T) {
	if _, err := resolvePath("  "); err == nil {
		t.Error("expected error for empty path")
	}

	got, err := resolvePath("relative.db")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %s", got)
	}
}
