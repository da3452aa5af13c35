package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carleetho/budgetpro/internal/model/entity"
)

// APURepository administra los analisis de precios unitarios. Cada partida
// tiene a lo sumo un analisis vigente; guardar uno nuevo reemplaza por
// completo al anterior.
type APURepository struct {
	db *gorm.DB
}

func NewAPURepository(db *gorm.DB) *APURepository {
	return &APURepository{db: db}
}

func (r *APURepository) FindByPartida(ctx context.Context, partidaID string) (*entity.AnalisisUnitario, error) {
	var apu entity.AnalisisUnitario
	err := r.db.WithContext(ctx).
		Preload("Detalles", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden ASC")
		}).
		Preload("Detalles.Recurso").
		Where("partida_id = ?", partidaID).
		First(&apu).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &apu, nil
}

// Replace descarta el analisis anterior de la partida y persiste el nuevo
// con sus detalles, en una sola transaccion.
func (r *APURepository) Replace(ctx context.Context, apu *entity.AnalisisUnitario) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("analisis_id IN (?)",
			tx.Model(&entity.AnalisisUnitario{}).Select("id").Where("partida_id = ?", apu.PartidaID),
		).Delete(&entity.DetalleAPU{}).Error; err != nil {
			return err
		}
		if err := tx.Where("partida_id = ?", apu.PartidaID).
			Delete(&entity.AnalisisUnitario{}).Error; err != nil {
			return err
		}

		// Los detalles llevan una copia del recurso solo para la respuesta;
		// no debe escribirse de vuelta al catalogo.
		if err := tx.Omit(clause.Associations).Create(apu).Error; err != nil {
			return err
		}
		for i := range apu.Detalles {
			if err := tx.Omit("Recurso").Create(&apu.Detalles[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
