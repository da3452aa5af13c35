package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/carleetho/budgetpro/internal/model/entity"
)

// UsuarioRepository administra las cuentas de usuario.
type UsuarioRepository struct {
	db *gorm.DB
}

func NewUsuarioRepository(db *gorm.DB) *UsuarioRepository {
	return &UsuarioRepository{db: db}
}

func (r *UsuarioRepository) Create(ctx context.Context, u *entity.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UsuarioRepository) FindByID(ctx context.Context, id string) (*entity.Usuario, error) {
	var u entity.Usuario
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &u, nil
}

func (r *UsuarioRepository) FindByEmail(ctx context.Context, email string) (*entity.Usuario, error) {
	var u entity.Usuario
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, traducirError(err)
	}
	return &u, nil
}

func (r *UsuarioRepository) Update(ctx context.Context, u *entity.Usuario) error {
	return r.db.WithContext(ctx).Save(u).Error
}
