package entity

import (
	"time"
)

// Presupuesto es el presupuesto de obra de un proyecto.
type Presupuesto struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	ProyectoID string     `json:"proyectoId" gorm:"size:36;not null;index"`
	Nombre     string     `json:"nombre" gorm:"size:128;not null"`
	Estado     string     `json:"estado" gorm:"size:16;not null;default:BORRADOR"`
	Aprobado   bool       `json:"aprobado" gorm:"not null;default:false"`
	AprobadoAt *time.Time `json:"aprobadoAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Proyecto *Proyecto `json:"-" gorm:"foreignKey:ProyectoID"`
}

func (Presupuesto) TableName() string {
	return "presupuestos"
}

// Estados de presupuesto
const (
	EstadoPresupuestoBorrador = "BORRADOR"
	EstadoPresupuestoAprobado = "APROBADO"
)

// Niveles de la estructura de desglose de trabajo (WBS).
const (
	NivelCapitulo    = "CAPITULO"
	NivelSubcapitulo = "SUBCAPITULO"
	NivelPartida     = "PARTIDA"
)

// ItemPresupuesto es un nodo del arbol de partidas. Se persiste como fila
// plana (padre_id + orden) y se expone por el API como arbol anidado; Hijos
// solo existe en memoria.
//
// Unidad, Metrado, PrecioUnitario y Parcial solo tienen significado cuando
// Nivel es PARTIDA. Parcial = Metrado * PrecioUnitario.
type ItemPresupuesto struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	PresupuestoID  string     `json:"presupuestoId" gorm:"size:36;not null;index"`
	PadreID        string     `json:"padreId,omitempty" gorm:"size:36;index"`
	Codigo         string     `json:"codigo" gorm:"size:32;not null"`
	Descripcion    string     `json:"descripcion" gorm:"size:256;not null"`
	Nivel          string     `json:"nivel" gorm:"size:16;not null"`
	Unidad         string     `json:"unidad,omitempty" gorm:"size:16"`
	Metrado        float64    `json:"metrado" gorm:"type:decimal(15,4)"`
	PrecioUnitario float64    `json:"precioUnitario" gorm:"type:decimal(15,4)"`
	Parcial        float64    `json:"parcial" gorm:"type:decimal(15,4)"`
	Orden          int        `json:"-" gorm:"not null;default:0"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`

	Hijos []ItemPresupuesto `json:"hijos" gorm:"-"`
}

func (ItemPresupuesto) TableName() string {
	return "partidas"
}

// EsHoja indica si el item es una partida (hoja del arbol).
func (i ItemPresupuesto) EsHoja() bool {
	return i.Nivel == NivelPartida
}
