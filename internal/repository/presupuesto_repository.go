package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/carleetho/budgetpro/internal/model/entity"
)

// PresupuestoRepository administra presupuestos y sus partidas. Las partidas
// se guardan como filas planas (padre_id + orden); el armado del arbol es
// responsabilidad del nucleo del paquete presupuesto.
type PresupuestoRepository struct {
	db *gorm.DB
}

func NewPresupuestoRepository(db *gorm.DB) *PresupuestoRepository {
	return &PresupuestoRepository{db: db}
}

func (r *PresupuestoRepository) Create(ctx context.Context, p *entity.Presupuesto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PresupuestoRepository) FindByID(ctx context.Context, id string) (*entity.Presupuesto, error) {
	var p entity.Presupuesto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &p, nil
}

func (r *PresupuestoRepository) FindByProyecto(ctx context.Context, proyectoID string) ([]entity.Presupuesto, error) {
	var presupuestos []entity.Presupuesto
	err := r.db.WithContext(ctx).
		Where("proyecto_id = ?", proyectoID).
		Order("created_at ASC").
		Find(&presupuestos).Error
	return presupuestos, err
}

func (r *PresupuestoRepository) Update(ctx context.Context, p *entity.Presupuesto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// ListItems devuelve todas las partidas del presupuesto ordenadas por orden
// de insercion entre hermanos, listas para ConstruirArbol.
func (r *PresupuestoRepository) ListItems(ctx context.Context, presupuestoID string) ([]entity.ItemPresupuesto, error) {
	var items []entity.ItemPresupuesto
	err := r.db.WithContext(ctx).
		Where("presupuesto_id = ?", presupuestoID).
		Order("padre_id ASC, orden ASC").
		Find(&items).Error
	return items, err
}

func (r *PresupuestoRepository) GetItem(ctx context.Context, id string) (*entity.ItemPresupuesto, error) {
	var item entity.ItemPresupuesto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &item, nil
}

func (r *PresupuestoRepository) CreateItem(ctx context.Context, item *entity.ItemPresupuesto) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *PresupuestoRepository) UpdateItem(ctx context.Context, item *entity.ItemPresupuesto) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// MaxOrden devuelve el mayor orden entre los hermanos bajo padreID.
func (r *PresupuestoRepository) MaxOrden(ctx context.Context, presupuestoID, padreID string) (int, error) {
	var max int
	query := r.db.WithContext(ctx).
		Model(&entity.ItemPresupuesto{}).
		Select("COALESCE(MAX(orden), -1)").
		Where("presupuesto_id = ?", presupuestoID)
	if padreID == "" {
		query = query.Where("padre_id = '' OR padre_id IS NULL")
	} else {
		query = query.Where("padre_id = ?", padreID)
	}
	err := query.Scan(&max).Error
	return max, err
}

// DeleteSubtree elimina la partida y todo su subarbol. Un ID inexistente no
// es un error: la eliminacion se expresa como filtro, no como busqueda.
func (r *PresupuestoRepository) DeleteSubtree(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []string{id}
		frontera := []string{id}
		for len(frontera) > 0 {
			var hijos []string
			if err := tx.Model(&entity.ItemPresupuesto{}).
				Where("padre_id IN ?", frontera).
				Pluck("id", &hijos).Error; err != nil {
				return err
			}
			ids = append(ids, hijos...)
			frontera = hijos
		}

		if err := tx.Where("analisis_id IN (?)",
			tx.Model(&entity.AnalisisUnitario{}).Select("id").Where("partida_id IN ?", ids),
		).Delete(&entity.DetalleAPU{}).Error; err != nil {
			return err
		}
		if err := tx.Where("partida_id IN ?", ids).Delete(&entity.AnalisisUnitario{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&entity.ItemPresupuesto{}).Error
	})
}

// UpdateParciales persiste en lote los parciales recalculados de ancestros.
func (r *PresupuestoRepository) UpdateParciales(ctx context.Context, parciales map[string]float64) error {
	if len(parciales) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for id, parcial := range parciales {
			if err := tx.Model(&entity.ItemPresupuesto{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{"parcial": parcial, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
