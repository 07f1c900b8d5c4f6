package ui

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/config"
	"github.com/javiermolinar/vendas/internal/dateutil"
	"github.com/javiermolinar/vendas/internal/sales"
	"github.com/javiermolinar/vendas/internal/scheduler"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.Default()
	cfg.Business.Timezone = "UTC"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "vendas.db")
	cfg.Log.Level = "error"
	cfg.Log.Format = "json"

	a := NewApp(cfg)
	a.now = func() time.Time { return time.Date(2025, 8, 21, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func run(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	a.root.SetOut(&buf)
	a.root.SetErr(&buf)
	a.root.SetArgs(args)
	err := a.root.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, a *App, args ...string) string {
	t.Helper()
	out, err := run(t, a, args...)
	if err != nil {
		t.Fatalf("vendas %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func findRecord(t *testing.T, a *App, kind sales.Kind) *sales.Record {
	t.Helper()
	records, err := a.repo.ListAllRecords(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range records {
		if r.Kind == kind {
			return r
		}
	}
	t.Fatalf("no %s recorded", kind)
	return nil
}

func seedTeam(t *testing.T, a *App) {
	t.Helper()
	mustRun(t, a, "actor", "add", "Carla", "--role=supervisor")
	mustRun(t, a, "actor", "add", "Bruno", "--role=salesperson", "--supervisor=carla")
	mustRun(t, a, "actor", "add", "Ana", "--role=sdr")
}

func TestVersion(t *testing.T) {
	a := newTestApp(t)

	out := mustRun(t, a, "version")
	if !strings.HasPrefix(out, "vendas ") {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestActorList(t *testing.T) {
	a := newTestApp(t)
	seedTeam(t, a)

	out := mustRun(t, a, "actor", "list", "--role=salesperson")
	if !strings.Contains(out, "Bruno") || !strings.Contains(out, "reports to Carla") {
		t.Errorf("unexpected actor list: %q", out)
	}
	if strings.Contains(out, "Ana") {
		t.Errorf("role filter ignored: %q", out)
	}
}

func TestActorAdd_UnknownSupervisor(t *testing.T) {
	a := newTestApp(t)

	_, err := run(t, a, "actor", "add", "Bruno", "--role=salesperson", "--supervisor=Nobody")
	if !errors.Is(err, sales.ErrActorNotFound) {
		t.Errorf("got error %v, want %v", err, sales.ErrActorNotFound)
	}
}

func TestMeetingAdd_OutsideWorkday(t *testing.T) {
	a := newTestApp(t)
	seedTeam(t, a)

	_, err := run(t, a, "meeting", "add", "--sdr=Ana", "--salesperson=Bruno", "--at=2025-08-23T10:00")
	if !errors.Is(err, scheduler.ErrNotWorkday) {
		t.Errorf("got error %v, want %v", err, scheduler.ErrNotWorkday)
	}
}

func TestMeetingAdd_WrongRole(t *testing.T) {
	a := newTestApp(t)
	seedTeam(t, a)

	if _, err := run(t, a, "meeting", "add", "--sdr=Bruno", "--salesperson=Bruno", "--at=2025-08-20T10:00"); err == nil {
		t.Error("expected error when a salesperson books as SDR")
	}
}

func TestSalesFlow(t *testing.T) {
	a := newTestApp(t)
	seedTeam(t, a)

	out := mustRun(t, a, "meeting", "add", "--sdr=Ana", "--salesperson=Bruno", "--at=2025-08-20T14:00")
	if !strings.Contains(out, "2025-W34") {
		t.Errorf("meeting output missing week: %q", out)
	}
	out = mustRun(t, a, "sale", "add", "--salesperson=Bruno", "--value=1500.50", "--at=2025-08-21T10:30")
	if !strings.Contains(out, "1,500.50") {
		t.Errorf("sale output missing value: %q", out)
	}

	meeting := findRecord(t, a, sales.KindMeeting)
	sale := findRecord(t, a, sales.KindSale)

	// Converting runs the auto-link job, which finds no approved sale yet
	// and then throttles the next automatic run.
	mustRun(t, a, "outcome", meeting.ID, "converted")
	out = mustRun(t, a, "outcome", sale.ID, "approved")
	if strings.Contains(out, "Linked") || !strings.Contains(out, "Auto-link of 2025-W34 skipped") {
		t.Errorf("auto-link should be throttled and say so: %q", out)
	}

	out = mustRun(t, a, "link", "--date=2025-08-20")
	if !strings.Contains(out, "Skipped") {
		t.Errorf("expected throttled link: %q", out)
	}
	out = mustRun(t, a, "link", "--date=2025-08-20", "--force")
	if !strings.Contains(out, "Linked 1 sale(s) in 2025-W34") {
		t.Errorf("unexpected link output: %q", out)
	}

	out = mustRun(t, a, "stats", "--role=sdr", "--date=2025-08-22")
	for _, want := range []string{"SDR  2025-W34", "Ana", "1,500.50", "60.02", "100%"} {
		if !strings.Contains(out, want) {
			t.Errorf("sdr stats missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, a, "stats", "--role=supervisor", "--date=2025-08-22")
	if !strings.Contains(out, "Carla") || !strings.Contains(out, "1,500.50") {
		t.Errorf("unexpected supervisor stats:\n%s", out)
	}

	out = mustRun(t, a, "month", "--role=salesperson", "--month=2025-08")
	for _, want := range []string{"2025-W31", "2025-W34", "2025-W35"} {
		if !strings.Contains(out, want) {
			t.Errorf("month output missing %s:\n%s", want, out)
		}
	}
}

func TestOutcome_Invalid(t *testing.T) {
	a := newTestApp(t)
	seedTeam(t, a)
	mustRun(t, a, "sale", "add", "--salesperson=Bruno", "--value=10", "--at=2025-08-21T10:30")
	sale := findRecord(t, a, sales.KindSale)

	_, err := run(t, a, "outcome", sale.ID, "converted")
	if !errors.Is(err, sales.ErrInvalidOutcome) {
		t.Errorf("got error %v, want %v", err, sales.ErrInvalidOutcome)
	}
}

func TestWeekCommands(t *testing.T) {
	a := newTestApp(t)

	out := mustRun(t, a, "week", "2025-08-22")
	if !strings.Contains(out, "2025-W34") || !strings.Contains(out, "Wed Aug 20 - Tue Aug 26, 2025") {
		t.Errorf("unexpected week output: %q", out)
	}
	if !strings.Contains(out, "23:59:59.999") {
		t.Errorf("week end should be the last millisecond: %q", out)
	}

	out = mustRun(t, a, "weeknum", "2025", "34")
	if !strings.Contains(out, "Wed Aug 20 - Tue Aug 26, 2025") {
		t.Errorf("unexpected weeknum output: %q", out)
	}

	_, err := run(t, a, "weeknum", "2026", "53")
	if !errors.Is(err, bizweek.ErrWeekOutOfRange) {
		t.Errorf("got error %v, want %v", err, bizweek.ErrWeekOutOfRange)
	}
}

func TestConfigInit(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	out := mustRun(t, a, "config", "--config", path, "--init")
	if !strings.Contains(out, "Created "+path) || !strings.Contains(out, "timezone        = UTC") {
		t.Errorf("unexpected config output: %q", out)
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("loading written config: %v", err)
	}
	if loaded.Business.Timezone != "UTC" {
		t.Errorf("timezone = %s, want UTC", loaded.Business.Timezone)
	}
}

func TestLinkWeek_RefreshesCachedReport(t *testing.T) {
	a := newTestApp(t)
	seedTeam(t, a)

	mustRun(t, a, "meeting", "add", "--sdr=Ana", "--salesperson=Bruno", "--at=2025-08-20T14:00")
	mustRun(t, a, "sale", "add", "--salesperson=Bruno", "--value=200", "--at=2025-08-21T10:30")
	meeting := findRecord(t, a, sales.KindMeeting)
	sale := findRecord(t, a, sales.KindSale)
	mustRun(t, a, "outcome", meeting.ID, "converted")
	mustRun(t, a, "outcome", sale.ID, "approved")

	ctx := context.Background()
	week := a.cal.Resolve(time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC))
	if _, err := a.reports.Week(ctx, sales.RoleSDR, week.Start); err != nil {
		t.Fatal(err)
	}

	n, err := a.linkWeek(ctx, week)
	if err != nil || n != 1 {
		t.Fatalf("linkWeek = %d, %v", n, err)
	}
	rep, err := a.reports.Week(ctx, sales.RoleSDR, week.Start)
	if err != nil {
		t.Fatal(err)
	}
	if got := rep.Total.Sum.String(); got != "200" {
		t.Errorf("sdr value after linking = %s, want 200", got)
	}
}

func TestDash_RejectsUnknownRole(t *testing.T) {
	a := newTestApp(t)

	_, err := run(t, a, "dash", "--role=manager")
	if !errors.Is(err, sales.ErrInvalidRole) {
		t.Errorf("got %v, want %v", err, sales.ErrInvalidRole)
	}
}

func TestRecords(t *testing.T) {
	a := newTestApp(t)
	seedTeam(t, a)

	mustRun(t, a, "meeting", "add", "--sdr=Ana", "--salesperson=Bruno", "--at=2025-08-20T14:00")
	mustRun(t, a, "sale", "add", "--salesperson=Bruno", "--value=1500.50", "--at=2025-08-21T10:30")
	mustRun(t, a, "sale", "add", "--salesperson=Bruno", "--value=99", "--at=2025-08-22T09:00")
	sale := findRecord(t, a, sales.KindSale)
	mustRun(t, a, "outcome", sale.ID, "approved")

	out := mustRun(t, a, "records", "--start=2025-08-20", "--end=2025-08-26", "--kind=")
	for _, want := range []string{"Wed 2025-08-20", "Thu 2025-08-21", "meeting", "with Bruno", "3 record(s)", "approved sales 1,500.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("records output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, a, "records", "--start=2025-08-20", "--end=2025-08-26", "--kind=sale")
	if strings.Contains(out, "meeting") || !strings.Contains(out, "2 record(s)") {
		t.Errorf("kind filter not applied:\n%s", out)
	}

	out = mustRun(t, a, "records", "--start=2025-08-21", "--end=", "--kind=")
	if !strings.Contains(out, "1 record(s)") {
		t.Errorf("single day listing:\n%s", out)
	}

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"end before start", []string{"--start=2025-08-26", "--end=2025-08-20", "--kind="}, dateutil.ErrEndDateBeforeStart},
		{"unknown kind", []string{"--start=2025-08-20", "--end=", "--kind=call"}, sales.ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, a, append([]string{"records"}, tt.args...)...)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
