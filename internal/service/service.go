package service

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/carleetho/budgetpro/internal/config"
	"github.com/carleetho/budgetpro/internal/repository"
)

// ErrorNegocio es el rechazo de una operacion por una regla de dominio, a
// diferenciar de una falla generica: el llamador puede mostrar la
// explicacion especifica en lugar de un aviso transitorio. Codigo sigue la
// convencion de la capa HTTP: los primeros tres digitos son la clase de
// estado (40010 -> 400, 40901 -> 409).
type ErrorNegocio struct {
	Codigo  int
	Mensaje string
}

func (e *ErrorNegocio) Error() string {
	return e.Mensaje
}

// EsErrorNegocio extrae un ErrorNegocio de la cadena de errores.
func EsErrorNegocio(err error) (*ErrorNegocio, bool) {
	var en *ErrorNegocio
	if errors.As(err, &en) {
		return en, true
	}
	return nil, false
}

// Services agrupa todos los servicios.
type Services struct {
	Auth        *AuthService
	Proyecto    *ProyectoService
	Presupuesto *PresupuestoService
	APU         *APUService
	Recurso     *RecursoService
	Produccion  *ProduccionService
}

// NewServices crea el conjunto de servicios.
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	presupuestoSvc := NewPresupuestoService(repos.Presupuesto, repos.Proyecto, repos.Produccion)
	return &Services{
		Auth:        NewAuthService(repos.Usuario, rdb, cfg),
		Proyecto:    NewProyectoService(repos.Proyecto, repos.Presupuesto),
		Presupuesto: presupuestoSvc,
		APU:         NewAPUService(repos.APU, repos.Presupuesto, repos.Recurso, presupuestoSvc),
		Recurso:     NewRecursoService(repos.Recurso, rdb),
		Produccion:  NewProduccionService(repos.Produccion, repos.Presupuesto, repos.Proyecto),
	}
}
