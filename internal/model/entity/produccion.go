package entity

import (
	"time"
)

// ReporteProduccion es un reporte diario de produccion de campo (RPC):
// cantidades ejecutadas por partida en una fecha. Un proyecto admite a lo
// sumo un reporte por fecha, y un reporte aprobado o rechazado es inmutable.
type ReporteProduccion struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	ProyectoID    string     `json:"proyectoId" gorm:"size:36;not null;index:idx_reportes_proyecto_fecha,unique"`
	FechaReporte  time.Time  `json:"fechaReporte" gorm:"type:date;not null;index:idx_reportes_proyecto_fecha,unique"`
	ResponsableID string     `json:"responsableId" gorm:"size:36"`
	Comentario    string     `json:"comentario,omitempty" gorm:"type:text"`
	UbicacionGPS  string     `json:"ubicacionGps,omitempty" gorm:"size:64"`
	Estado        string     `json:"estado" gorm:"size:16;not null;default:PENDIENTE"`
	AprobadoPor   string     `json:"aprobadoPor,omitempty" gorm:"size:36"`
	AprobadoAt    *time.Time `json:"aprobadoAt,omitempty"`
	RechazadoPor  string     `json:"rechazadoPor,omitempty" gorm:"size:36"`
	RechazadoAt   *time.Time `json:"rechazadoAt,omitempty"`
	MotivoRechazo string     `json:"motivoRechazo,omitempty" gorm:"type:text"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Detalles []DetalleRPC `json:"detalles" gorm:"foreignKey:ReporteID"`
}

func (ReporteProduccion) TableName() string {
	return "reportes_produccion"
}

// Estados de reporte de produccion
const (
	EstadoReportePendiente = "PENDIENTE"
	EstadoReporteAprobado  = "APROBADO"
	EstadoReporteRechazado = "RECHAZADO"
)

// DetalleRPC es el avance reportado para una partida dentro de un RPC.
type DetalleRPC struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	ReporteID         string    `json:"-" gorm:"size:36;not null;index"`
	PartidaID         string    `json:"partidaId" gorm:"size:36;not null;index"`
	CantidadReportada float64   `json:"cantidadReportada" gorm:"type:decimal(15,4);not null"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

func (DetalleRPC) TableName() string {
	return "rpc_detalles"
}
