// Package dock models the catracas: turnstile slots that gate bicycle
// pickup and return.
package dock

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Status int

const (
	Free Status = iota
	Occupied
)

// Dock represents a single catraca. A dock is occupied exactly while a
// bicycle is attached to it.
type Dock struct {
	ID uuid.UUID `db:"id" json:"id"`
	// Station is the baia this catraca belongs to.
	Station   string     `db:"baia" json:"baia"`
	Status    Status     `db:"status" json:"status"`
	BicycleID *uuid.UUID `db:"bicicleta_id_acoplada" json:"bicicleta_id_acoplada"`
}

func (s Status) String() string {
	return [...]string{"livre", "ocupada"}[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *Status) Scan(i any) error {
	var str string
	switch v := i.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into dock status", i)
	}

	switch str {
	case "livre":
		*s = Free
	case "ocupada":
		*s = Occupied
	default:
		return fmt.Errorf("unknown dock status %q", str)
	}
	return nil
}
