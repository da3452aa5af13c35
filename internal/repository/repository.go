package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound se devuelve cuando el registro buscado no existe.
var ErrNotFound = errors.New("registro no encontrado")

// Repositories agrupa todos los repositorios.
type Repositories struct {
	Proyecto    *ProyectoRepository
	Presupuesto *PresupuestoRepository
	Recurso     *RecursoRepository
	APU         *APURepository
	Produccion  *ProduccionRepository
	Usuario     *UsuarioRepository
}

// NewRepositories crea el conjunto de repositorios.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Proyecto:    NewProyectoRepository(db),
		Presupuesto: NewPresupuestoRepository(db),
		Recurso:     NewRecursoRepository(db),
		APU:         NewAPURepository(db),
		Produccion:  NewProduccionRepository(db),
		Usuario:     NewUsuarioRepository(db),
	}
}

func traducirError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
