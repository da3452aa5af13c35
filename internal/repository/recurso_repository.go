package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/carleetho/budgetpro/internal/model/entity"
)

// RecursoRepository administra el catalogo de recursos.
type RecursoRepository struct {
	db *gorm.DB
}

func NewRecursoRepository(db *gorm.DB) *RecursoRepository {
	return &RecursoRepository{db: db}
}

func (r *RecursoRepository) Create(ctx context.Context, recurso *entity.Recurso) error {
	return r.db.WithContext(ctx).Create(recurso).Error
}

func (r *RecursoRepository) FindByID(ctx context.Context, id string) (*entity.Recurso, error) {
	var recurso entity.Recurso
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&recurso).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &recurso, nil
}

func (r *RecursoRepository) Update(ctx context.Context, recurso *entity.Recurso) error {
	return r.db.WithContext(ctx).Save(recurso).Error
}

// Search busca recursos activos por termino libre (nombre o codigo) con
// filtro opcional por tipo, en orden estable por codigo.
func (r *RecursoRepository) Search(ctx context.Context, termino, tipo string) ([]entity.Recurso, error) {
	query := r.db.WithContext(ctx).
		Where("deleted_at IS NULL AND estado = ?", entity.EstadoRecursoActivo)
	if termino != "" {
		patron := "%" + termino + "%"
		query = query.Where("nombre ILIKE ? OR codigo ILIKE ?", patron, patron)
	}
	if tipo != "" {
		query = query.Where("tipo = ?", tipo)
	}

	var recursos []entity.Recurso
	err := query.Order("codigo ASC").Find(&recursos).Error
	return recursos, err
}
