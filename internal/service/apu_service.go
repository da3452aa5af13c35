package service

import (
	"context"
	"fmt"
	"time"

	"github.com/carleetho/budgetpro/internal/model/entity"
	"github.com/carleetho/budgetpro/internal/presupuesto"
	"github.com/carleetho/budgetpro/internal/repository"
)

// DetalleAPUInput es una linea del analisis enviada por el cliente. El precio
// es opcional: si no se envia, se toma el precio base vigente del recurso.
type DetalleAPUInput struct {
	RecursoID   string   `json:"recursoId" binding:"required"`
	Rendimiento float64  `json:"rendimiento" binding:"required"`
	Precio      *float64 `json:"precio"`
}

// GuardarAPUInput es la solicitud de guardado del analisis de una partida.
// Reemplaza por completo el analisis anterior.
type GuardarAPUInput struct {
	RendimientoDiario *float64          `json:"rendimientoDiario"`
	Detalles          []DetalleAPUInput `json:"detalles" binding:"required"`
}

// VistaAPU es el analisis con su detalle agrupado por tipo de recurso.
type VistaAPU struct {
	Analisis *entity.AnalisisUnitario       `json:"analisis"`
	Grupos   map[string][]entity.DetalleAPU `json:"grupos"`
}

// APUService compone y persiste los analisis de precios unitarios.
type APUService struct {
	apuRepo         *repository.APURepository
	presupuestoRepo *repository.PresupuestoRepository
	recursoRepo     *repository.RecursoRepository
	presupuestoSvc  *PresupuestoService
}

func NewAPUService(apuRepo *repository.APURepository, presupuestoRepo *repository.PresupuestoRepository, recursoRepo *repository.RecursoRepository, presupuestoSvc *PresupuestoService) *APUService {
	return &APUService{
		apuRepo:         apuRepo,
		presupuestoRepo: presupuestoRepo,
		recursoRepo:     recursoRepo,
		presupuestoSvc:  presupuestoSvc,
	}
}

// Obtener devuelve el analisis vigente de la partida con su detalle agrupado.
// Una partida sin analisis devuelve una vista vacia, no un error.
func (s *APUService) Obtener(ctx context.Context, partidaID string) (*VistaAPU, error) {
	partida, err := s.presupuestoRepo.GetItem(ctx, partidaID)
	if err != nil {
		return nil, err
	}
	if !partida.EsHoja() {
		return nil, &ErrorNegocio{Codigo: 40012, Mensaje: "Solo las partidas tienen analisis de precios unitarios."}
	}

	apu, err := s.apuRepo.FindByPartida(ctx, partidaID)
	if err != nil {
		if err == repository.ErrNotFound {
			apu = &entity.AnalisisUnitario{PartidaID: partidaID, Detalles: []entity.DetalleAPU{}}
		} else {
			return nil, err
		}
	}
	return &VistaAPU{
		Analisis: apu,
		Grupos:   presupuesto.AgruparPorTipo(apu.Detalles),
	}, nil
}

// Guardar reemplaza el analisis de la partida por el detalle enviado, escribe
// el costo directo como precio unitario de la partida y recalcula los
// parciales de sus ancestros.
func (s *APUService) Guardar(ctx context.Context, presupuestoID, partidaID string, input *GuardarAPUInput) (*entity.AnalisisUnitario, error) {
	p, err := s.presupuestoSvc.obtenerEditable(ctx, presupuestoID)
	if err != nil {
		return nil, err
	}
	partida, err := s.presupuestoRepo.GetItem(ctx, partidaID)
	if err != nil {
		return nil, err
	}
	if partida.PresupuestoID != p.ID {
		return nil, repository.ErrNotFound
	}
	if !partida.EsHoja() {
		return nil, &ErrorNegocio{Codigo: 40012, Mensaje: "Solo las partidas tienen analisis de precios unitarios."}
	}

	detalles := []entity.DetalleAPU{}
	for _, linea := range input.Detalles {
		if linea.Rendimiento <= 0 {
			return nil, &ErrorNegocio{Codigo: 40013, Mensaje: "El rendimiento de cada linea debe ser mayor que cero."}
		}
		recurso, err := s.recursoRepo.FindByID(ctx, linea.RecursoID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, &ErrorNegocio{Codigo: 40014, Mensaje: "El recurso " + linea.RecursoID + " no existe en el catalogo."}
			}
			return nil, err
		}
		detalles = presupuesto.AgregarRecurso(detalles, *recurso)
		id := detalles[len(detalles)-1].ID
		detalles = presupuesto.ActualizarRendimiento(detalles, id, linea.Rendimiento)
		if linea.Precio != nil {
			detalles = presupuesto.ActualizarPrecio(detalles, id, *linea.Precio)
		}
	}

	apu := presupuesto.Cerrar(partidaID, detalles, input.RendimientoDiario)
	if err := s.apuRepo.Replace(ctx, &apu); err != nil {
		return nil, fmt.Errorf("guardar analisis: %w", err)
	}

	partida.PrecioUnitario = apu.CostoDirecto
	partida.Parcial = partida.Metrado * apu.CostoDirecto
	partida.UpdatedAt = time.Now()
	if err := s.presupuestoRepo.UpdateItem(ctx, partida); err != nil {
		return nil, fmt.Errorf("actualizar partida: %w", err)
	}
	if err := s.presupuestoSvc.RecalcularYPersistir(ctx, p.ID); err != nil {
		return nil, err
	}
	return &apu, nil
}
