package entity

import "time"

// Material representa una materia prima (tabla materias_primas).
// Es de solo lectura para el ledger; la crea la administración de inventario.
type Material struct {
	ID        int64
	Name      string
	Category  string // tipo_material
	CreatedAt time.Time
}
