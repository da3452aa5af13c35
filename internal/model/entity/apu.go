package entity

import (
	"time"
)

// AnalisisUnitario descompone el costo unitario de una partida en lineas de
// recursos ponderadas. CostoDirecto = suma de los parciales de sus detalles;
// al guardar, el costo directo se escribe como precio unitario de la partida.
type AnalisisUnitario struct {
	ID                string     `json:"id" gorm:"primaryKey;size:36"`
	PartidaID         string     `json:"partidaId" gorm:"size:36;not null;uniqueIndex"`
	RendimientoDiario *float64   `json:"rendimientoDiario,omitempty" gorm:"type:decimal(15,4)"`
	CostoDirecto      float64    `json:"costoDirecto" gorm:"type:decimal(15,4);not null"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	Detalles []DetalleAPU `json:"detalles" gorm:"foreignKey:AnalisisID"`
}

func (AnalisisUnitario) TableName() string {
	return "analisis_unitarios"
}

// DetalleAPU es una linea de recurso dentro de un analisis unitario.
// Precio es una copia del precio del catalogo al momento de agregar el
// recurso; cambios posteriores del catalogo no lo afectan.
// Parcial = Rendimiento * Precio.
type DetalleAPU struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	AnalisisID  string    `json:"-" gorm:"size:36;not null;index"`
	RecursoID   string    `json:"recursoId" gorm:"size:36;not null"`
	Rendimiento float64   `json:"rendimiento" gorm:"type:decimal(15,4);not null"`
	Precio      float64   `json:"precio" gorm:"type:decimal(15,4);not null"`
	Parcial     float64   `json:"parcial" gorm:"type:decimal(15,4);not null"`
	Orden       int       `json:"-" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// Copia desnormalizada del recurso al momento de agregarlo.
	Recurso *Recurso `json:"recurso,omitempty" gorm:"foreignKey:RecursoID"`
}

func (DetalleAPU) TableName() string {
	return "apu_detalles"
}
