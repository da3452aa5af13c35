package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/carleetho/budgetpro/internal/model/entity"
	"github.com/carleetho/budgetpro/internal/repository"
)

const (
	recursoCacheVersionKey = "recursos:busqueda:version"
	recursoCacheTTL        = 5 * time.Minute
)

// CrearRecursoInput es la solicitud de alta de un recurso del catalogo.
type CrearRecursoInput struct {
	Codigo      string  `json:"codigo" binding:"required"`
	Nombre      string  `json:"nombre" binding:"required"`
	Descripcion string  `json:"descripcion"`
	Tipo        string  `json:"tipo" binding:"required"`
	Unidad      string  `json:"unidad" binding:"required"`
	PrecioBase  float64 `json:"precioBase"`
}

// ActualizarRecursoInput es la solicitud de actualizacion de un recurso.
type ActualizarRecursoInput struct {
	Nombre      *string  `json:"nombre"`
	Descripcion *string  `json:"descripcion"`
	Unidad      *string  `json:"unidad"`
	PrecioBase  *float64 `json:"precioBase"`
	Estado      *string  `json:"estado"`
}

// RecursoService administra el catalogo de insumos. Las busquedas se cachean
// en redis con una clave versionada: cada escritura incrementa la version y
// las entradas viejas expiran solas.
type RecursoService struct {
	recursoRepo *repository.RecursoRepository
	rdb         *redis.Client
}

func NewRecursoService(recursoRepo *repository.RecursoRepository, rdb *redis.Client) *RecursoService {
	return &RecursoService{recursoRepo: recursoRepo, rdb: rdb}
}

func (s *RecursoService) Crear(ctx context.Context, input *CrearRecursoInput, createdBy string) (*entity.Recurso, error) {
	if !tipoRecursoValido(input.Tipo) {
		return nil, &ErrorNegocio{Codigo: 40020, Mensaje: "Tipo de recurso no valido: " + input.Tipo}
	}
	if input.PrecioBase < 0 {
		return nil, &ErrorNegocio{Codigo: 40021, Mensaje: "El precio base no puede ser negativo."}
	}

	now := time.Now()
	recurso := &entity.Recurso{
		ID:          uuid.New().String(),
		Codigo:      input.Codigo,
		Nombre:      input.Nombre,
		Descripcion: input.Descripcion,
		Tipo:        input.Tipo,
		Unidad:      input.Unidad,
		PrecioBase:  input.PrecioBase,
		Estado:      entity.EstadoRecursoActivo,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.recursoRepo.Create(ctx, recurso); err != nil {
		return nil, fmt.Errorf("crear recurso: %w", err)
	}
	s.invalidarBusquedas(ctx)
	return recurso, nil
}

func (s *RecursoService) Obtener(ctx context.Context, id string) (*entity.Recurso, error) {
	return s.recursoRepo.FindByID(ctx, id)
}

func (s *RecursoService) Actualizar(ctx context.Context, id string, input *ActualizarRecursoInput) (*entity.Recurso, error) {
	recurso, err := s.recursoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Nombre != nil {
		recurso.Nombre = *input.Nombre
	}
	if input.Descripcion != nil {
		recurso.Descripcion = *input.Descripcion
	}
	if input.Unidad != nil {
		recurso.Unidad = *input.Unidad
	}
	if input.PrecioBase != nil {
		if *input.PrecioBase < 0 {
			return nil, &ErrorNegocio{Codigo: 40021, Mensaje: "El precio base no puede ser negativo."}
		}
		recurso.PrecioBase = *input.PrecioBase
	}
	if input.Estado != nil {
		switch *input.Estado {
		case entity.EstadoRecursoActivo, entity.EstadoRecursoInactivo:
			recurso.Estado = *input.Estado
		default:
			return nil, &ErrorNegocio{Codigo: 40022, Mensaje: "Estado de recurso no valido: " + *input.Estado}
		}
	}
	recurso.UpdatedAt = time.Now()

	if err := s.recursoRepo.Update(ctx, recurso); err != nil {
		return nil, fmt.Errorf("actualizar recurso: %w", err)
	}
	s.invalidarBusquedas(ctx)
	return recurso, nil
}

// Buscar consulta el catalogo activo por termino y tipo, pasando por el cache.
func (s *RecursoService) Buscar(ctx context.Context, termino, tipo string) ([]entity.Recurso, error) {
	clave, ok := s.claveBusqueda(ctx, termino, tipo)
	if ok {
		if crudo, err := s.rdb.Get(ctx, clave).Result(); err == nil {
			var recursos []entity.Recurso
			if err := json.Unmarshal([]byte(crudo), &recursos); err == nil {
				return recursos, nil
			}
		}
	}

	recursos, err := s.recursoRepo.Search(ctx, termino, tipo)
	if err != nil {
		return nil, fmt.Errorf("buscar recursos: %w", err)
	}

	if ok {
		if crudo, err := json.Marshal(recursos); err == nil {
			if err := s.rdb.Set(ctx, clave, crudo, recursoCacheTTL).Err(); err != nil {
				zap.L().Warn("no se pudo cachear la busqueda de recursos", zap.Error(err))
			}
		}
	}
	return recursos, nil
}

// claveBusqueda arma la clave de cache con la version vigente. Si redis no
// responde, la busqueda sigue sin cache.
func (s *RecursoService) claveBusqueda(ctx context.Context, termino, tipo string) (string, bool) {
	if s.rdb == nil {
		return "", false
	}
	version, err := s.rdb.Get(ctx, recursoCacheVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", false
	}
	return fmt.Sprintf("recursos:busqueda:v%d:%s:%s", version, tipo, termino), true
}

func (s *RecursoService) invalidarBusquedas(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, recursoCacheVersionKey).Err(); err != nil {
		zap.L().Warn("no se pudo invalidar el cache de recursos", zap.Error(err))
	}
}

func tipoRecursoValido(tipo string) bool {
	for _, t := range entity.TiposRecurso {
		if t == tipo {
			return true
		}
	}
	return false
}
