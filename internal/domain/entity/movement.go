package entity

import (
	"strings"
	"time"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

const (
	MovementTypeEntry MovementType = "entry" // entrada
	MovementTypeExit  MovementType = "exit"  // salida
)

// ParseMovementType normaliza el tipo recibido. Acepta los valores heredados
// de la app móvil ("entrada", "salida"). ok=false si no es un tipo conocido.
func ParseMovementType(s string) (MovementType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entry", "entrada", "in":
		return MovementTypeEntry, true
	case "exit", "salida", "out":
		return MovementTypeExit, true
	}
	return "", false
}

// Movement es un evento inmutable del libro de movimientos (append-only).
// Quantity siempre es positiva; el signo lo da Type.
type Movement struct {
	ID        string
	ProductID string
	Type      MovementType
	Quantity  int64
	Note      string
	Timestamp time.Time
	CreatedBy string
}
