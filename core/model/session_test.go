package model

import (
	"math"
	"testing"
	"time"
)

func TestAccumulateAttributesWholeTick(t *testing.T) {
	s := ChargingSession{ID: "sess_1", TargetKWh: 10}
	s.Accumulate(7360, SourceRenewable, time.Minute)
	want := 7.36 / 60
	if math.Abs(s.RenewableKWh-want) > 1e-12 {
		t.Errorf("renewable bucket: got %.6f want %.6f", s.RenewableKWh, want)
	}
	if s.UtilityKWh != 0 {
		t.Errorf("utility bucket must stay empty, got %.6f", s.UtilityKWh)
	}

	s.Accumulate(7360, SourceUtility, time.Minute)
	if math.Abs(s.UtilityKWh-want) > 1e-12 {
		t.Errorf("utility bucket: got %.6f want %.6f", s.UtilityKWh, want)
	}
	if math.Abs(s.TotalKWh()-2*want) > 1e-12 {
		t.Errorf("total: got %.6f", s.TotalKWh())
	}
}

func TestAccumulateIgnoresDegenerateInput(t *testing.T) {
	s := ChargingSession{TargetKWh: 10}
	s.Accumulate(0, SourceRenewable, time.Minute)
	s.Accumulate(-100, SourceRenewable, time.Minute)
	s.Accumulate(7360, SourceRenewable, 0)
	s.Accumulate(7360, SourceRenewable, -time.Minute)
	s.Accumulate(7360, SourceNone, time.Minute)
	if s.TotalKWh() != 0 {
		t.Errorf("degenerate input accumulated energy: %.6f", s.TotalKWh())
	}
}

func TestCostDerivedFromSplit(t *testing.T) {
	tariff := Tariff{RenewableRatePerKWh: 10, UtilityRatePerKWh: 50}
	s := ChargingSession{RenewableKWh: 2, UtilityKWh: 0.5}
	want := 2*10.0 + 0.5*50.0
	if got := s.Cost(tariff); math.Abs(got-want) > 1e-12 {
		t.Errorf("cost: got %.2f want %.2f", got, want)
	}
}

func TestFinalizePreservesSplit(t *testing.T) {
	start := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	tariff := Tariff{RenewableRatePerKWh: 10, UtilityRatePerKWh: 50}
	s := ChargingSession{
		ID: "sess_1", UnitID: "evse_unit_01", StartTime: start,
		TargetKWh: 5, RenewableKWh: 3, UtilityKWh: 1,
	}
	fin := s.Finalize(end, ReasonStopped, tariff)
	if fin.SessionID != "sess_1" || fin.UnitID != "evse_unit_01" {
		t.Errorf("identity lost: %+v", fin)
	}
	if !fin.StartTime.Equal(start) || !fin.EndTime.Equal(end) {
		t.Errorf("times wrong: %+v", fin)
	}
	if fin.RenewableKWh != 3 || fin.UtilityKWh != 1 {
		t.Errorf("split lost: %+v", fin)
	}
	if fin.TotalCost != 3*10+1*50 {
		t.Errorf("cost not derived from split: %.2f", fin.TotalCost)
	}
	if fin.Reason != ReasonStopped {
		t.Errorf("reason: got %s", fin.Reason)
	}
}

func TestTariffValidate(t *testing.T) {
	if err := (Tariff{RenewableRatePerKWh: 10, UtilityRatePerKWh: 50}).Validate(); err != nil {
		t.Errorf("valid tariff rejected: %v", err)
	}
	if err := (Tariff{RenewableRatePerKWh: -1}).Validate(); err == nil {
		t.Error("negative rate accepted")
	}
}
