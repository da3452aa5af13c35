package entity

import (
	"time"
)

// Recurso es un insumo del catalogo: material, mano de obra, equipo o
// subcontrato. PrecioBase es el precio vigente del catalogo; los APU copian
// este valor al agregar el recurso y no se re-sincronizan.
type Recurso struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Codigo      string     `json:"codigo" gorm:"size:32;not null;uniqueIndex"`
	Nombre      string     `json:"nombre" gorm:"size:128;not null"`
	Descripcion string     `json:"descripcion,omitempty" gorm:"type:text"`
	Tipo        string     `json:"tipo" gorm:"size:16;not null;index"`
	Unidad      string     `json:"unidad" gorm:"size:16;not null"`
	PrecioBase  float64    `json:"precioBase" gorm:"type:decimal(15,4);not null"`
	Estado      string     `json:"estado" gorm:"size:16;not null;default:ACTIVO"`
	CreatedBy   string     `json:"createdBy" gorm:"size:36"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"-" gorm:"index"`
}

func (Recurso) TableName() string {
	return "recursos"
}

// Tipos de recurso
const (
	TipoMaterial    = "MATERIAL"
	TipoManoDeObra  = "MANO_DE_OBRA"
	TipoEquipo      = "EQUIPO"
	TipoSubcontrato = "SUBCONTRATO"
)

// Estados de recurso
const (
	EstadoRecursoActivo   = "ACTIVO"
	EstadoRecursoInactivo = "INACTIVO"
)

// TiposRecurso lista los tipos validos en el orden de presentacion.
var TiposRecurso = []string{TipoMaterial, TipoManoDeObra, TipoEquipo, TipoSubcontrato}
