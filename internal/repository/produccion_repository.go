package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carleetho/budgetpro/internal/model/entity"
)

// ProduccionRepository administra los reportes de produccion de campo.
type ProduccionRepository struct {
	db *gorm.DB
}

func NewProduccionRepository(db *gorm.DB) *ProduccionRepository {
	return &ProduccionRepository{db: db}
}

// Create persiste el reporte junto con sus detalles.
func (r *ProduccionRepository) Create(ctx context.Context, reporte *entity.ReporteProduccion) error {
	return r.db.WithContext(ctx).Create(reporte).Error
}

func (r *ProduccionRepository) FindByID(ctx context.Context, id string) (*entity.ReporteProduccion, error) {
	var reporte entity.ReporteProduccion
	err := r.db.WithContext(ctx).
		Preload("Detalles").
		Where("id = ?", id).
		First(&reporte).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &reporte, nil
}

// Update reemplaza el reporte y su detalle completo.
func (r *ProduccionRepository) Update(ctx context.Context, reporte *entity.ReporteProduccion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reporte_id = ?", reporte.ID).Delete(&entity.DetalleRPC{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(reporte).Error; err != nil {
			return err
		}
		for i := range reporte.Detalles {
			reporte.Detalles[i].ReporteID = reporte.ID
			if err := tx.Create(&reporte.Detalles[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ProduccionRepository) ListByProyecto(ctx context.Context, proyectoID string) ([]entity.ReporteProduccion, error) {
	var reportes []entity.ReporteProduccion
	err := r.db.WithContext(ctx).
		Preload("Detalles").
		Where("proyecto_id = ?", proyectoID).
		Order("fecha_reporte DESC").
		Find(&reportes).Error
	return reportes, err
}

// ExistsByFecha indica si el proyecto ya tiene un reporte para la fecha.
func (r *ProduccionRepository) ExistsByFecha(ctx context.Context, proyectoID string, fecha time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ReporteProduccion{}).
		Where("proyecto_id = ? AND fecha_reporte = ?", proyectoID, fecha).
		Count(&count).Error
	return count > 0, err
}

// AcumuladoAprobado devuelve la cantidad total reportada y aprobada para la
// partida.
func (r *ProduccionRepository) AcumuladoAprobado(ctx context.Context, partidaID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&entity.DetalleRPC{}).
		Select("COALESCE(SUM(rpc_detalles.cantidad_reportada), 0)").
		Joins("JOIN reportes_produccion ON reportes_produccion.id = rpc_detalles.reporte_id").
		Where("rpc_detalles.partida_id = ? AND reportes_produccion.estado = ?",
			partidaID, entity.EstadoReporteAprobado).
		Scan(&total).Error
	return total, err
}

// AcumuladosPorPartida devuelve el acumulado aprobado de cada partida del
// conjunto, para el reporte de control de costos.
func (r *ProduccionRepository) AcumuladosPorPartida(ctx context.Context, partidaIDs []string) (map[string]float64, error) {
	acumulados := make(map[string]float64, len(partidaIDs))
	if len(partidaIDs) == 0 {
		return acumulados, nil
	}

	type fila struct {
		PartidaID string
		Total     float64
	}
	var filas []fila
	err := r.db.WithContext(ctx).
		Model(&entity.DetalleRPC{}).
		Select("rpc_detalles.partida_id AS partida_id, COALESCE(SUM(rpc_detalles.cantidad_reportada), 0) AS total").
		Joins("JOIN reportes_produccion ON reportes_produccion.id = rpc_detalles.reporte_id").
		Where("rpc_detalles.partida_id IN ? AND reportes_produccion.estado = ?",
			partidaIDs, entity.EstadoReporteAprobado).
		Group("rpc_detalles.partida_id").
		Scan(&filas).Error
	if err != nil {
		return nil, err
	}
	for _, f := range filas {
		acumulados[f.PartidaID] = f.Total
	}
	return acumulados, nil
}
