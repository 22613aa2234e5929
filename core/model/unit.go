package model

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a charging unit.
type Status int

const (
	StatusAvailable Status = iota
	StatusPreparing
	StatusCharging
	StatusFinishing
	StatusFaulted
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusPreparing:
		return "preparing"
	case StatusCharging:
		return "charging"
	case StatusFinishing:
		return "finishing"
	case StatusFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Active reports whether a session is bound to the unit in this status.
func (s Status) Active() bool {
	return s == StatusPreparing || s == StatusCharging || s == StatusFinishing
}

// MarshalJSON encodes the status as its wire string.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the wire string form.
func (s *Status) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v {
	case "available":
		*s = StatusAvailable
	case "preparing":
		*s = StatusPreparing
	case "charging":
		*s = StatusCharging
	case "finishing":
		*s = StatusFinishing
	case "faulted":
		*s = StatusFaulted
	default:
		return fmt.Errorf("unknown status %q", v)
	}
	return nil
}

// ConnectorClass identifies the electrical rating of a charging unit.
type ConnectorClass int

const (
	Level1 ConnectorClass = iota + 1 // 230 V / 16 A slow charger
	Level2                           // 230 V / 32 A fast charger
	Level3                           // 400 V / 63 A rapid charger
)

// VoltageV returns the nominal supply voltage for the class.
func (c ConnectorClass) VoltageV() float64 {
	if c == Level3 {
		return 400
	}
	return 230
}

// MaxCurrentA returns the maximum deliverable current for the class.
func (c ConnectorClass) MaxCurrentA() float64 {
	switch c {
	case Level1:
		return 16
	case Level3:
		return 63
	default:
		return 32
	}
}

// NominalPowerW is the rated power of the class.
func (c ConnectorClass) NominalPowerW() float64 {
	return c.VoltageV() * c.MaxCurrentA()
}

// Valid reports whether c is a known class.
func (c ConnectorClass) Valid() bool {
	return c >= Level1 && c <= Level3
}

// String returns the wire name of the class.
func (c ConnectorClass) String() string {
	switch c {
	case Level1:
		return "level_1"
	case Level2:
		return "level_2"
	case Level3:
		return "level_3"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the class as its wire name.
func (c ConnectorClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the wire name or the numeric level.
func (c *ConnectorClass) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid connector class %s", data)
		}
		*c = ConnectorClass(n)
		return nil
	}
	switch v {
	case "level_1":
		*c = Level1
	case "level_2":
		*c = Level2
	case "level_3":
		*c = Level3
	case "":
		*c = 0
	default:
		return fmt.Errorf("unknown connector class %q", v)
	}
	return nil
}

// UnitConfig describes the static identity of one charging unit.
type UnitConfig struct {
	ID    string         `json:"id"`
	Class ConnectorClass `json:"class"`
}

// Validate checks the unit identity.
func (u UnitConfig) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("unit id is required")
	}
	if !u.Class.Valid() {
		return fmt.Errorf("unit %s: unknown connector class %d", u.ID, u.Class)
	}
	return nil
}
