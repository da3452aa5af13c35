package entity

import (
	"time"
)

// Proyecto es un proyecto de obra.
type Proyecto struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	Nombre    string     `json:"nombre" gorm:"size:128;not null"`
	Ubicacion string     `json:"ubicacion" gorm:"size:128"`
	Estado    string     `json:"estado" gorm:"size:16;not null;default:BORRADOR"`
	CreatedBy string     `json:"createdBy" gorm:"size:36"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	Presupuestos []Presupuesto `json:"presupuestos,omitempty" gorm:"foreignKey:ProyectoID"`
}

func (Proyecto) TableName() string {
	return "proyectos"
}

// Estados de proyecto
const (
	EstadoProyectoBorrador  = "BORRADOR"
	EstadoProyectoEjecucion = "EJECUCION"
	EstadoProyectoCerrado   = "CERRADO"
)
