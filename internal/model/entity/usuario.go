package entity

import (
	"time"
)

// Usuario es una cuenta del sistema.
type Usuario struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Email        string     `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Nombre       string     `json:"nombre" gorm:"size:128;not null"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Rol          string     `json:"rol" gorm:"size:16;not null;default:usuario"`
	Activo       bool       `json:"activo" gorm:"not null;default:true"`
	UltimoLogin  *time.Time `json:"ultimoLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (Usuario) TableName() string {
	return "usuarios"
}

// Roles de usuario
const (
	RolAdmin   = "admin"
	RolUsuario = "usuario"
)
