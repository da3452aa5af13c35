package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/carleetho/budgetpro/internal/model/entity"
	"github.com/carleetho/budgetpro/internal/presupuesto"
	"github.com/carleetho/budgetpro/internal/repository"
)

// CrearItemInput es la solicitud de creacion de un item del presupuesto.
// El nivel del item no se envia: lo determina el nivel del padre.
type CrearItemInput struct {
	PadreID        string  `json:"padreId"`
	Codigo         string  `json:"codigo" binding:"required"`
	Descripcion    string  `json:"descripcion" binding:"required"`
	Unidad         string  `json:"unidad"`
	Metrado        float64 `json:"metrado"`
	PrecioUnitario float64 `json:"precioUnitario"`
}

// ActualizarItemInput es la solicitud de actualizacion de un item.
// Los punteros distinguen "no enviado" de "cero".
type ActualizarItemInput struct {
	Codigo         *string  `json:"codigo"`
	Descripcion    *string  `json:"descripcion"`
	Unidad         *string  `json:"unidad"`
	Metrado        *float64 `json:"metrado"`
	PrecioUnitario *float64 `json:"precioUnitario"`
}

// ArbolPresupuesto es la vista anidada del presupuesto con su costo directo.
type ArbolPresupuesto struct {
	Presupuesto  *entity.Presupuesto      `json:"presupuesto"`
	Items        []entity.ItemPresupuesto `json:"items"`
	CostoDirecto float64                  `json:"costoDirecto"`
}

// FilaControl es una fila del tablero de control de costos: lo presupuestado
// de una partida contra su avance aprobado acumulado.
type FilaControl struct {
	PartidaID       string  `json:"partidaId"`
	Codigo          string  `json:"codigo"`
	Descripcion     string  `json:"descripcion"`
	Unidad          string  `json:"unidad"`
	Metrado         float64 `json:"metrado"`
	PrecioUnitario  float64 `json:"precioUnitario"`
	Parcial         float64 `json:"parcial"`
	AvanceAcumulado float64 `json:"avanceAcumulado"`
	Saldo           float64 `json:"saldo"`
	GastoAcumulado  float64 `json:"gastoAcumulado"`
}

// PresupuestoService administra el arbol de partidas y sus totales.
type PresupuestoService struct {
	presupuestoRepo *repository.PresupuestoRepository
	proyectoRepo    *repository.ProyectoRepository
	produccionRepo  *repository.ProduccionRepository
}

func NewPresupuestoService(presupuestoRepo *repository.PresupuestoRepository, proyectoRepo *repository.ProyectoRepository, produccionRepo *repository.ProduccionRepository) *PresupuestoService {
	return &PresupuestoService{
		presupuestoRepo: presupuestoRepo,
		proyectoRepo:    proyectoRepo,
		produccionRepo:  produccionRepo,
	}
}

// ObtenerArbol arma la vista anidada desde las filas planas y recalcula los
// parciales de capitulos y subcapitulos a partir de las partidas.
func (s *PresupuestoService) ObtenerArbol(ctx context.Context, presupuestoID string) (*ArbolPresupuesto, error) {
	p, err := s.presupuestoRepo.FindByID(ctx, presupuestoID)
	if err != nil {
		return nil, err
	}
	items, err := s.presupuestoRepo.ListItems(ctx, presupuestoID)
	if err != nil {
		return nil, fmt.Errorf("listar items: %w", err)
	}
	arbol := presupuesto.RecalcularAncestros(presupuesto.ConstruirArbol(items))
	return &ArbolPresupuesto{
		Presupuesto:  p,
		Items:        arbol,
		CostoDirecto: presupuesto.Rollup(arbol),
	}, nil
}

// CrearItem agrega un nodo al arbol. El nivel se deriva del padre: un hijo de
// capitulo es subcapitulo y un hijo de subcapitulo es partida. Las partidas no
// admiten hijos.
func (s *PresupuestoService) CrearItem(ctx context.Context, presupuestoID string, input *CrearItemInput) (*entity.ItemPresupuesto, error) {
	p, err := s.obtenerEditable(ctx, presupuestoID)
	if err != nil {
		return nil, err
	}

	nivel := entity.NivelCapitulo
	if input.PadreID != "" {
		padre, err := s.presupuestoRepo.GetItem(ctx, input.PadreID)
		if err != nil {
			return nil, err
		}
		if padre.PresupuestoID != p.ID {
			return nil, &ErrorNegocio{Codigo: 40010, Mensaje: "El padre indicado no pertenece a este presupuesto."}
		}
		if padre.EsHoja() {
			return nil, &ErrorNegocio{Codigo: 40011, Mensaje: "Una partida no admite items hijos."}
		}
		nivel = presupuesto.NivelHijo(padre.Nivel)
	}

	orden, err := s.presupuestoRepo.MaxOrden(ctx, p.ID, input.PadreID)
	if err != nil {
		return nil, fmt.Errorf("calcular orden: %w", err)
	}

	now := time.Now()
	item := &entity.ItemPresupuesto{
		ID:            uuid.New().String(),
		PresupuestoID: p.ID,
		PadreID:       input.PadreID,
		Codigo:        input.Codigo,
		Descripcion:   input.Descripcion,
		Nivel:         nivel,
		Orden:         orden + 1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if item.EsHoja() {
		item.Unidad = input.Unidad
		item.Metrado = input.Metrado
		item.PrecioUnitario = input.PrecioUnitario
		item.Parcial = input.Metrado * input.PrecioUnitario
	}

	if err := s.presupuestoRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("crear item: %w", err)
	}
	if item.EsHoja() {
		if err := s.RecalcularYPersistir(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// ActualizarItem modifica un item y, si cambia el costo de una partida,
// recalcula los parciales de sus ancestros.
func (s *PresupuestoService) ActualizarItem(ctx context.Context, presupuestoID, itemID string, input *ActualizarItemInput) (*entity.ItemPresupuesto, error) {
	p, err := s.obtenerEditable(ctx, presupuestoID)
	if err != nil {
		return nil, err
	}
	item, err := s.presupuestoRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.PresupuestoID != p.ID {
		return nil, repository.ErrNotFound
	}

	if input.Codigo != nil {
		item.Codigo = *input.Codigo
	}
	if input.Descripcion != nil {
		item.Descripcion = *input.Descripcion
	}
	costoCambio := false
	if item.EsHoja() {
		if input.Unidad != nil {
			item.Unidad = *input.Unidad
		}
		if input.Metrado != nil {
			item.Metrado = *input.Metrado
			costoCambio = true
		}
		if input.PrecioUnitario != nil {
			item.PrecioUnitario = *input.PrecioUnitario
			costoCambio = true
		}
		item.Parcial = item.Metrado * item.PrecioUnitario
	}
	item.UpdatedAt = time.Now()

	if err := s.presupuestoRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("actualizar item: %w", err)
	}
	if costoCambio {
		if err := s.RecalcularYPersistir(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// EliminarItem quita el item y todo su subarbol, incluidos los APU de las
// partidas alcanzadas. Un id inexistente no es un error.
func (s *PresupuestoService) EliminarItem(ctx context.Context, presupuestoID, itemID string) error {
	p, err := s.obtenerEditable(ctx, presupuestoID)
	if err != nil {
		return err
	}
	item, err := s.presupuestoRepo.GetItem(ctx, itemID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil
		}
		return err
	}
	if item.PresupuestoID != p.ID {
		return nil
	}
	if err := s.presupuestoRepo.DeleteSubtree(ctx, itemID); err != nil {
		return fmt.Errorf("eliminar subarbol: %w", err)
	}
	return s.RecalcularYPersistir(ctx, p.ID)
}

// Aprobar congela el presupuesto. Un presupuesto aprobado ya no admite
// cambios en su arbol ni en sus APU.
func (s *PresupuestoService) Aprobar(ctx context.Context, presupuestoID string) (*entity.Presupuesto, error) {
	p, err := s.presupuestoRepo.FindByID(ctx, presupuestoID)
	if err != nil {
		return nil, err
	}
	if p.Aprobado {
		return nil, &ErrorNegocio{Codigo: 40902, Mensaje: "El presupuesto ya fue aprobado."}
	}
	now := time.Now()
	p.Estado = entity.EstadoPresupuestoAprobado
	p.Aprobado = true
	p.AprobadoAt = &now
	p.UpdatedAt = now
	if err := s.presupuestoRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("aprobar presupuesto: %w", err)
	}
	return p, nil
}

// ControlCostos cruza cada partida con su avance aprobado acumulado en los
// reportes de produccion.
func (s *PresupuestoService) ControlCostos(ctx context.Context, presupuestoID string) ([]FilaControl, error) {
	p, err := s.presupuestoRepo.FindByID(ctx, presupuestoID)
	if err != nil {
		return nil, err
	}
	items, err := s.presupuestoRepo.ListItems(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("listar items: %w", err)
	}
	partidas := presupuesto.Aplanar(presupuesto.ConstruirArbol(items))

	ids := make([]string, 0, len(partidas))
	for i := range partidas {
		ids = append(ids, partidas[i].ID)
	}
	acumulados, err := s.produccionRepo.AcumuladosPorPartida(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("acumulados de produccion: %w", err)
	}

	filas := make([]FilaControl, 0, len(partidas))
	for i := range partidas {
		pa := partidas[i]
		avance := acumulados[pa.ID]
		filas = append(filas, FilaControl{
			PartidaID:       pa.ID,
			Codigo:          pa.Codigo,
			Descripcion:     pa.Descripcion,
			Unidad:          pa.Unidad,
			Metrado:         pa.Metrado,
			PrecioUnitario:  pa.PrecioUnitario,
			Parcial:         pa.Parcial,
			AvanceAcumulado: avance,
			Saldo:           pa.Metrado - avance,
			GastoAcumulado:  avance * pa.PrecioUnitario,
		})
	}
	return filas, nil
}

// ExportarExcel genera el presupuesto en una hoja de calculo, con los items
// sangrados segun su nivel y el costo directo al pie.
func (s *PresupuestoService) ExportarExcel(ctx context.Context, presupuestoID string) (*excelize.File, error) {
	arbol, err := s.ObtenerArbol(ctx, presupuestoID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const hoja = "Presupuesto"
	f.SetSheetName("Sheet1", hoja)

	encabezados := []string{"Codigo", "Descripcion", "Unidad", "Metrado", "Precio Unitario", "Parcial"}
	for i, h := range encabezados {
		celda, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(hoja, celda, h)
	}
	negrita, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetRowStyle(hoja, 1, 1, negrita)
	f.SetColWidth(hoja, "B", "B", 48)

	fila := 2
	var escribir func(nodos []entity.ItemPresupuesto, sangria int)
	escribir = func(nodos []entity.ItemPresupuesto, sangria int) {
		for i := range nodos {
			n := nodos[i]
			prefijo := ""
			for j := 0; j < sangria; j++ {
				prefijo += "    "
			}
			f.SetCellValue(hoja, fmt.Sprintf("A%d", fila), n.Codigo)
			f.SetCellValue(hoja, fmt.Sprintf("B%d", fila), prefijo+n.Descripcion)
			if n.EsHoja() {
				f.SetCellValue(hoja, fmt.Sprintf("C%d", fila), n.Unidad)
				f.SetCellValue(hoja, fmt.Sprintf("D%d", fila), n.Metrado)
				f.SetCellValue(hoja, fmt.Sprintf("E%d", fila), n.PrecioUnitario)
			} else {
				f.SetRowStyle(hoja, fila, fila, negrita)
			}
			f.SetCellValue(hoja, fmt.Sprintf("F%d", fila), n.Parcial)
			fila++
			escribir(n.Hijos, sangria+1)
		}
	}
	escribir(arbol.Items, 0)

	f.SetCellValue(hoja, fmt.Sprintf("B%d", fila+1), "COSTO DIRECTO")
	f.SetCellValue(hoja, fmt.Sprintf("F%d", fila+1), arbol.CostoDirecto)
	f.SetRowStyle(hoja, fila+1, fila+1, negrita)

	return f, nil
}

// RecalcularYPersistir reconstruye el arbol, recalcula los parciales de los
// niveles agregados y persiste solo los que cambiaron.
func (s *PresupuestoService) RecalcularYPersistir(ctx context.Context, presupuestoID string) error {
	items, err := s.presupuestoRepo.ListItems(ctx, presupuestoID)
	if err != nil {
		return fmt.Errorf("listar items: %w", err)
	}
	previos := make(map[string]float64, len(items))
	for i := range items {
		previos[items[i].ID] = items[i].Parcial
	}

	arbol := presupuesto.RecalcularAncestros(presupuesto.ConstruirArbol(items))

	cambios := make(map[string]float64)
	var recorrer func(nodos []entity.ItemPresupuesto)
	recorrer = func(nodos []entity.ItemPresupuesto) {
		for i := range nodos {
			n := nodos[i]
			if !n.EsHoja() && previos[n.ID] != n.Parcial {
				cambios[n.ID] = n.Parcial
			}
			recorrer(n.Hijos)
		}
	}
	recorrer(arbol)

	if len(cambios) == 0 {
		return nil
	}
	if err := s.presupuestoRepo.UpdateParciales(ctx, cambios); err != nil {
		return fmt.Errorf("persistir parciales: %w", err)
	}
	return nil
}

// obtenerEditable devuelve el presupuesto si todavia admite cambios.
func (s *PresupuestoService) obtenerEditable(ctx context.Context, presupuestoID string) (*entity.Presupuesto, error) {
	p, err := s.presupuestoRepo.FindByID(ctx, presupuestoID)
	if err != nil {
		return nil, err
	}
	if p.Aprobado {
		return nil, &ErrorNegocio{Codigo: 40903, Mensaje: "El presupuesto esta aprobado y no admite modificaciones."}
	}
	return p, nil
}
