package presupuesto

import (
	"time"

	"github.com/google/uuid"

	"github.com/carleetho/budgetpro/internal/model/entity"
)

// AgregarRecurso agrega una linea nueva al final del detalle con rendimiento
// 1.0 y el precio base del recurso. El precio y la copia del recurso son una
// instantanea: cambios posteriores del catalogo no afectan la linea.
func AgregarRecurso(detalles []entity.DetalleAPU, recurso entity.Recurso) []entity.DetalleAPU {
	r := recurso
	d := entity.DetalleAPU{
		ID:          uuid.New().String(),
		RecursoID:   recurso.ID,
		Recurso:     &r,
		Rendimiento: 1.0,
		Precio:      recurso.PrecioBase,
		Parcial:     recurso.PrecioBase,
	}
	out := make([]entity.DetalleAPU, len(detalles), len(detalles)+1)
	copy(out, detalles)
	return append(out, d)
}

// ActualizarRendimiento reemplaza el rendimiento de la linea indicada y
// recomputa su parcial; las demas lineas quedan intactas.
func ActualizarRendimiento(detalles []entity.DetalleAPU, detalleID string, rendimiento float64) []entity.DetalleAPU {
	out := clonarDetalles(detalles)
	for i := range out {
		if out[i].ID == detalleID {
			out[i].Rendimiento = rendimiento
			out[i].Parcial = rendimiento * out[i].Precio
		}
	}
	return out
}

// ActualizarPrecio reemplaza el precio de la linea indicada y recomputa su
// parcial, manteniendo el rendimiento.
func ActualizarPrecio(detalles []entity.DetalleAPU, detalleID string, precio float64) []entity.DetalleAPU {
	out := clonarDetalles(detalles)
	for i := range out {
		if out[i].ID == detalleID {
			out[i].Precio = precio
			out[i].Parcial = out[i].Rendimiento * precio
		}
	}
	return out
}

// EliminarDetalle filtra la linea indicada; un ID inexistente es un no-op.
func EliminarDetalle(detalles []entity.DetalleAPU, detalleID string) []entity.DetalleAPU {
	out := make([]entity.DetalleAPU, 0, len(detalles))
	for _, d := range detalles {
		if d.ID != detalleID {
			out = append(out, d)
		}
	}
	return out
}

// CostoTotal suma los parciales del detalle. Se recomputa en cada lectura,
// nunca se cachea: el total mostrado o guardado siempre es consistente con
// el detalle vigente.
func CostoTotal(detalles []entity.DetalleAPU) float64 {
	var total float64
	for _, d := range detalles {
		total += d.Parcial
	}
	return total
}

// AgruparPorTipo particiona el detalle por tipo de recurso conservando el
// orden de insercion dentro de cada grupo. Una linea sin copia del recurso
// no se clasifica en ningun grupo.
func AgruparPorTipo(detalles []entity.DetalleAPU) map[string][]entity.DetalleAPU {
	grupos := make(map[string][]entity.DetalleAPU, len(entity.TiposRecurso))
	for _, tipo := range entity.TiposRecurso {
		grupos[tipo] = []entity.DetalleAPU{}
	}
	for _, d := range detalles {
		if d.Recurso == nil {
			continue
		}
		if _, ok := grupos[d.Recurso.Tipo]; !ok {
			continue
		}
		grupos[d.Recurso.Tipo] = append(grupos[d.Recurso.Tipo], d)
	}
	return grupos
}

// Cerrar empaqueta el detalle vigente en un analisis unitario inmutable.
// El llamador es responsable de escribir CostoDirecto como precio unitario
// de la partida y de recomputar su parcial.
func Cerrar(partidaID string, detalles []entity.DetalleAPU, rendimientoDiario *float64) entity.AnalisisUnitario {
	now := time.Now()
	apu := entity.AnalisisUnitario{
		ID:                uuid.New().String(),
		PartidaID:         partidaID,
		RendimientoDiario: rendimientoDiario,
		CostoDirecto:      CostoTotal(detalles),
		Detalles:          clonarDetalles(detalles),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for i := range apu.Detalles {
		apu.Detalles[i].AnalisisID = apu.ID
		apu.Detalles[i].Orden = i
	}
	return apu
}

func clonarDetalles(detalles []entity.DetalleAPU) []entity.DetalleAPU {
	out := make([]entity.DetalleAPU, len(detalles))
	copy(out, detalles)
	return out
}
