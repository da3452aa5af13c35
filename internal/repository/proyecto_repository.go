package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/carleetho/budgetpro/internal/model/entity"
)

// ProyectoRepository administra la tabla de proyectos.
type ProyectoRepository struct {
	db *gorm.DB
}

func NewProyectoRepository(db *gorm.DB) *ProyectoRepository {
	return &ProyectoRepository{db: db}
}

func (r *ProyectoRepository) Create(ctx context.Context, p *entity.Proyecto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProyectoRepository) FindByID(ctx context.Context, id string) (*entity.Proyecto, error) {
	var p entity.Proyecto
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&p).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &p, nil
}

// List devuelve proyectos paginados, opcionalmente filtrados por estado.
func (r *ProyectoRepository) List(ctx context.Context, estado string, page, pageSize int) ([]entity.Proyecto, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.Proyecto{}).
		Where("deleted_at IS NULL")
	if estado != "" {
		query = query.Where("estado = ?", estado)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proyectos []entity.Proyecto
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&proyectos).Error
	return proyectos, total, err
}

func (r *ProyectoRepository) Update(ctx context.Context, p *entity.Proyecto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete marca el proyecto como eliminado.
func (r *ProyectoRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Proyecto{}).
		Where("id = ?", id).
		Update("deleted_at", gorm.Expr("NOW()")).Error
}
