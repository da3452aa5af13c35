package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carleetho/budgetpro/internal/model/entity"
	"github.com/carleetho/budgetpro/internal/repository"
)

// Mensajes de las reglas de negocio de los reportes de produccion.
const (
	mensajeFechaFutura       = "La fecha del reporte no puede ser futura."
	mensajeReporteDuplicado  = "Ya existe un reporte de produccion para este proyecto en esa fecha."
	mensajeExcesoMetrado     = "La cantidad reportada excede el saldo disponible de la partida. Requiere Orden de Cambio."
	mensajeReporteInmutable  = "Un reporte aprobado es inmutable. Debe crear una Nota de Crédito o un Reporte Deductivo para corregir."
	mensajeProyectoSinAvance = "No se puede reportar avance en un proyecto que no esta en EJECUCION."
	mensajeReporteYaResuelto = "El reporte ya fue aprobado o rechazado."
)

// DetalleRPCInput es el avance de una partida dentro de un reporte.
type DetalleRPCInput struct {
	PartidaID         string  `json:"partidaId" binding:"required"`
	CantidadReportada float64 `json:"cantidadReportada" binding:"required"`
}

// CrearReporteInput es la solicitud de registro de un reporte diario.
type CrearReporteInput struct {
	FechaReporte string            `json:"fechaReporte" binding:"required"`
	Comentario   string            `json:"comentario"`
	UbicacionGPS string            `json:"ubicacionGps"`
	Detalles     []DetalleRPCInput `json:"detalles" binding:"required"`
}

// ActualizarReporteInput es la solicitud de correccion de un reporte
// pendiente. Los detalles enviados reemplazan a los anteriores.
type ActualizarReporteInput struct {
	Comentario *string           `json:"comentario"`
	Detalles   []DetalleRPCInput `json:"detalles"`
}

// ProduccionService administra los reportes diarios de produccion de campo.
type ProduccionService struct {
	produccionRepo  *repository.ProduccionRepository
	presupuestoRepo *repository.PresupuestoRepository
	proyectoRepo    *repository.ProyectoRepository
}

func NewProduccionService(produccionRepo *repository.ProduccionRepository, presupuestoRepo *repository.PresupuestoRepository, proyectoRepo *repository.ProyectoRepository) *ProduccionService {
	return &ProduccionService{
		produccionRepo:  produccionRepo,
		presupuestoRepo: presupuestoRepo,
		proyectoRepo:    proyectoRepo,
	}
}

// CrearReporte registra un reporte diario en estado pendiente. Rechaza fechas
// futuras, fechas duplicadas por proyecto y cantidades que excedan el saldo
// de metrado de la partida.
func (s *ProduccionService) CrearReporte(ctx context.Context, proyectoID string, input *CrearReporteInput, responsableID string) (*entity.ReporteProduccion, error) {
	proyecto, err := s.proyectoRepo.FindByID(ctx, proyectoID)
	if err != nil {
		return nil, err
	}
	if proyecto.Estado != entity.EstadoProyectoEjecucion {
		return nil, &ErrorNegocio{Codigo: 40037, Mensaje: mensajeProyectoSinAvance}
	}

	fecha, err := time.Parse("2006-01-02", input.FechaReporte)
	if err != nil {
		return nil, &ErrorNegocio{Codigo: 40030, Mensaje: "La fecha del reporte debe tener formato AAAA-MM-DD."}
	}
	// Comparacion por dia calendario local; la hora del servidor no cuenta.
	if fecha.Format("2006-01-02") > time.Now().Format("2006-01-02") {
		return nil, &ErrorNegocio{Codigo: 40031, Mensaje: mensajeFechaFutura}
	}

	existe, err := s.produccionRepo.ExistsByFecha(ctx, proyectoID, fecha)
	if err != nil {
		return nil, fmt.Errorf("verificar fecha: %w", err)
	}
	if existe {
		return nil, &ErrorNegocio{Codigo: 40910, Mensaje: mensajeReporteDuplicado}
	}

	if len(input.Detalles) == 0 {
		return nil, &ErrorNegocio{Codigo: 40032, Mensaje: "El reporte debe incluir al menos una partida."}
	}

	now := time.Now()
	reporte := &entity.ReporteProduccion{
		ID:            uuid.New().String(),
		ProyectoID:    proyectoID,
		FechaReporte:  fecha,
		ResponsableID: responsableID,
		Comentario:    input.Comentario,
		UbicacionGPS:  input.UbicacionGPS,
		Estado:        entity.EstadoReportePendiente,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	detalles, err := s.validarDetalles(ctx, reporte.ID, input.Detalles)
	if err != nil {
		return nil, err
	}
	reporte.Detalles = detalles

	if err := s.produccionRepo.Create(ctx, reporte); err != nil {
		return nil, fmt.Errorf("crear reporte: %w", err)
	}
	return reporte, nil
}

func (s *ProduccionService) Obtener(ctx context.Context, id string) (*entity.ReporteProduccion, error) {
	return s.produccionRepo.FindByID(ctx, id)
}

func (s *ProduccionService) Listar(ctx context.Context, proyectoID string) ([]entity.ReporteProduccion, error) {
	return s.produccionRepo.ListByProyecto(ctx, proyectoID)
}

// Actualizar corrige un reporte pendiente. Un reporte ya aprobado o
// rechazado no se toca: las correcciones van por nota de credito o
// reporte deductivo.
func (s *ProduccionService) Actualizar(ctx context.Context, id string, input *ActualizarReporteInput) (*entity.ReporteProduccion, error) {
	reporte, err := s.produccionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reporte.Estado != entity.EstadoReportePendiente {
		return nil, &ErrorNegocio{Codigo: 40911, Mensaje: mensajeReporteInmutable}
	}

	if input.Comentario != nil {
		reporte.Comentario = *input.Comentario
	}
	if input.Detalles != nil {
		detalles, err := s.validarDetalles(ctx, reporte.ID, input.Detalles)
		if err != nil {
			return nil, err
		}
		reporte.Detalles = detalles
	}
	reporte.UpdatedAt = time.Now()

	if err := s.produccionRepo.Update(ctx, reporte); err != nil {
		return nil, fmt.Errorf("actualizar reporte: %w", err)
	}
	return reporte, nil
}

// Aprobar congela el reporte; desde entonces sus cantidades cuentan en el
// acumulado de avance de cada partida.
func (s *ProduccionService) Aprobar(ctx context.Context, id, aprobadorID string) (*entity.ReporteProduccion, error) {
	reporte, err := s.produccionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reporte.Estado != entity.EstadoReportePendiente {
		return nil, &ErrorNegocio{Codigo: 40912, Mensaje: mensajeReporteYaResuelto}
	}

	now := time.Now()
	reporte.Estado = entity.EstadoReporteAprobado
	reporte.AprobadoPor = aprobadorID
	reporte.AprobadoAt = &now
	reporte.UpdatedAt = now

	if err := s.produccionRepo.Update(ctx, reporte); err != nil {
		return nil, fmt.Errorf("aprobar reporte: %w", err)
	}
	return reporte, nil
}

// Rechazar descarta un reporte pendiente. Un reporte rechazado queda
// inmutable igual que uno aprobado, pero no suma al acumulado de avance.
func (s *ProduccionService) Rechazar(ctx context.Context, id, revisorID, motivo string) (*entity.ReporteProduccion, error) {
	reporte, err := s.produccionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reporte.Estado != entity.EstadoReportePendiente {
		return nil, &ErrorNegocio{Codigo: 40912, Mensaje: mensajeReporteYaResuelto}
	}

	now := time.Now()
	reporte.Estado = entity.EstadoReporteRechazado
	reporte.RechazadoPor = revisorID
	reporte.RechazadoAt = &now
	reporte.MotivoRechazo = motivo
	reporte.UpdatedAt = now

	if err := s.produccionRepo.Update(ctx, reporte); err != nil {
		return nil, fmt.Errorf("rechazar reporte: %w", err)
	}
	return reporte, nil
}

// validarDetalles verifica cada linea contra el saldo de metrado de su
// partida: acumulado aprobado mas lo reportado no puede exceder el metrado.
func (s *ProduccionService) validarDetalles(ctx context.Context, reporteID string, lineas []DetalleRPCInput) ([]entity.DetalleRPC, error) {
	now := time.Now()
	detalles := make([]entity.DetalleRPC, 0, len(lineas))
	for _, linea := range lineas {
		if linea.CantidadReportada <= 0 {
			return nil, &ErrorNegocio{Codigo: 40033, Mensaje: "La cantidad reportada debe ser mayor que cero."}
		}
		partida, err := s.presupuestoRepo.GetItem(ctx, linea.PartidaID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, &ErrorNegocio{Codigo: 40034, Mensaje: "La partida " + linea.PartidaID + " no existe."}
			}
			return nil, err
		}
		if !partida.EsHoja() {
			return nil, &ErrorNegocio{Codigo: 40035, Mensaje: "Solo se reporta avance sobre partidas."}
		}

		acumulado, err := s.produccionRepo.AcumuladoAprobado(ctx, partida.ID)
		if err != nil {
			return nil, fmt.Errorf("acumulado de partida: %w", err)
		}
		if acumulado+linea.CantidadReportada > partida.Metrado {
			return nil, &ErrorNegocio{Codigo: 40036, Mensaje: mensajeExcesoMetrado}
		}

		detalles = append(detalles, entity.DetalleRPC{
			ID:                uuid.New().String(),
			ReporteID:         reporteID,
			PartidaID:         partida.ID,
			CantidadReportada: linea.CantidadReportada,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return detalles, nil
}
