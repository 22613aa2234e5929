package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/solarfleet/core/model"
	"github.com/kilianp07/solarfleet/infra/logger"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			res, err := Run(sc, logger.NopLogger{})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := res.CountReason(model.ReasonComplete); got != sc.Expected.Completed {
				t.Errorf("expected %d completed, got %d", sc.Expected.Completed, got)
			}
			if got := res.CountReason(model.ReasonStopped); got != sc.Expected.Stopped {
				t.Errorf("expected %d stopped, got %d", sc.Expected.Stopped, got)
			}
			// Faults come from a seeded random source, so the expectation is
			// a floor rather than an exact count.
			if got := res.CountReason(model.ReasonFault); got < sc.Expected.Faulted {
				t.Errorf("expected at least %d faulted, got %d", sc.Expected.Faulted, got)
			}
			if sc.Expected.MinRenewablePct != nil && res.RenewablePct < *sc.Expected.MinRenewablePct {
				t.Errorf("renewable share %.1f%% below floor %.1f%%", res.RenewablePct, *sc.Expected.MinRenewablePct)
			}
			if sc.Expected.MaxRenewablePct != nil && res.RenewablePct > *sc.Expected.MaxRenewablePct {
				t.Errorf("renewable share %.1f%% above ceiling %.1f%%", res.RenewablePct, *sc.Expected.MaxRenewablePct)
			}
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestLoadRejectsEmptyFleet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	data := "name: empty\nticks: 10\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for scenario without units")
	}
}
