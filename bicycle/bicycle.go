// Package bicycle manages the electric bike fleet.
package bicycle

import (
	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable   Status = "disponível"
	StatusRented      Status = "alugada"
	StatusUnavailable Status = "indisponível"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusRented, StatusUnavailable:
		return true
	}
	return false
}

// DockStatus reflects whether the bicycle is physically attached to a catraca.
type DockStatus string

const (
	Docked          DockStatus = "docked"
	Undocked        DockStatus = "undocked"
	UnavailableDock DockStatus = "unavailable_dock"
)

func (s DockStatus) Valid() bool {
	switch s {
	case Docked, Undocked, UnavailableDock:
		return true
	}
	return false
}

// ChargeLevels are the three battery tiers a bicycle reports.
var ChargeLevels = []int{10, 15, 20}

// ValidChargeLevel reports whether level is one of the fixed tiers.
func ValidChargeLevel(level int) bool {
	for _, l := range ChargeLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Bicycle represents an electric bike in the fleet. Field tags carry the
// persisted names; they are shared by the database schema and the JSON API.
type Bicycle struct {
	ID uuid.UUID `db:"id" json:"id"`
	// Model is fixed to "elétrica"; the fleet has a single bike type.
	Model       string `db:"modelo" json:"modelo"`
	ChargeLevel int    `db:"quilometragem_carga" json:"quilometragem_carga"`
	Status      Status `db:"status" json:"status"`
	// Station is the baia the bicycle belongs to.
	Station    string     `db:"baia" json:"baia"`
	ImageURL   string     `db:"img" json:"img"`
	DockStatus DockStatus `db:"turnstile_status" json:"turnstile_status"`
	// DockID is the catraca the bicycle is attached to, null while the
	// bicycle is undocked.
	DockID *uuid.UUID `db:"catraca_id" json:"catraca_id"`
}
