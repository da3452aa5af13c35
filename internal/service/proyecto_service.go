package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carleetho/budgetpro/internal/model/entity"
	"github.com/carleetho/budgetpro/internal/repository"
)

// CrearProyectoInput es la solicitud de creacion de proyecto.
type CrearProyectoInput struct {
	Nombre    string `json:"nombre" binding:"required"`
	Ubicacion string `json:"ubicacion"`
}

// ActualizarProyectoInput es la solicitud de actualizacion de proyecto.
type ActualizarProyectoInput struct {
	Nombre    string `json:"nombre"`
	Ubicacion string `json:"ubicacion"`
	Estado    string `json:"estado"`
}

// ProyectoService administra el ciclo de vida de los proyectos.
type ProyectoService struct {
	proyectoRepo    *repository.ProyectoRepository
	presupuestoRepo *repository.PresupuestoRepository
}

func NewProyectoService(proyectoRepo *repository.ProyectoRepository, presupuestoRepo *repository.PresupuestoRepository) *ProyectoService {
	return &ProyectoService{proyectoRepo: proyectoRepo, presupuestoRepo: presupuestoRepo}
}

// Crear registra el proyecto y su presupuesto base en borrador.
func (s *ProyectoService) Crear(ctx context.Context, input *CrearProyectoInput, createdBy string) (*entity.Proyecto, error) {
	now := time.Now()
	proyecto := &entity.Proyecto{
		ID:        uuid.New().String(),
		Nombre:    input.Nombre,
		Ubicacion: input.Ubicacion,
		Estado:    entity.EstadoProyectoBorrador,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.proyectoRepo.Create(ctx, proyecto); err != nil {
		return nil, fmt.Errorf("crear proyecto: %w", err)
	}

	presupuesto := &entity.Presupuesto{
		ID:         uuid.New().String(),
		ProyectoID: proyecto.ID,
		Nombre:     "Presupuesto Base",
		Estado:     entity.EstadoPresupuestoBorrador,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.presupuestoRepo.Create(ctx, presupuesto); err != nil {
		return nil, fmt.Errorf("crear presupuesto base: %w", err)
	}
	proyecto.Presupuestos = []entity.Presupuesto{*presupuesto}

	return proyecto, nil
}

func (s *ProyectoService) Obtener(ctx context.Context, id string) (*entity.Proyecto, error) {
	proyecto, err := s.proyectoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	presupuestos, err := s.presupuestoRepo.FindByProyecto(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listar presupuestos: %w", err)
	}
	proyecto.Presupuestos = presupuestos
	return proyecto, nil
}

func (s *ProyectoService) Listar(ctx context.Context, estado string, page, pageSize int) ([]entity.Proyecto, int64, error) {
	return s.proyectoRepo.List(ctx, estado, page, pageSize)
}

func (s *ProyectoService) Actualizar(ctx context.Context, id string, input *ActualizarProyectoInput) (*entity.Proyecto, error) {
	proyecto, err := s.proyectoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Nombre != "" {
		proyecto.Nombre = input.Nombre
	}
	if input.Ubicacion != "" {
		proyecto.Ubicacion = input.Ubicacion
	}
	if input.Estado != "" {
		switch input.Estado {
		case entity.EstadoProyectoBorrador, entity.EstadoProyectoEjecucion, entity.EstadoProyectoCerrado:
			proyecto.Estado = input.Estado
		default:
			return nil, &ErrorNegocio{Codigo: 40010, Mensaje: "Estado de proyecto no valido: " + input.Estado}
		}
	}
	proyecto.UpdatedAt = time.Now()

	if err := s.proyectoRepo.Update(ctx, proyecto); err != nil {
		return nil, fmt.Errorf("actualizar proyecto: %w", err)
	}
	return proyecto, nil
}

func (s *ProyectoService) Eliminar(ctx context.Context, id string) error {
	if _, err := s.proyectoRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.proyectoRepo.Delete(ctx, id)
}
