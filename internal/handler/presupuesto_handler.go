package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carleetho/budgetpro/internal/service"
)

// PresupuestoHandler expone el arbol de partidas y sus operaciones.
type PresupuestoHandler struct {
	svc *service.PresupuestoService
}

func NewPresupuestoHandler(svc *service.PresupuestoService) *PresupuestoHandler {
	return &PresupuestoHandler{svc: svc}
}

// GetArbol devuelve el presupuesto como arbol anidado.
// GET /api/v1/presupuestos/:id/arbol
func (h *PresupuestoHandler) GetArbol(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del presupuesto es requerido")
		return
	}

	arbol, err := h.svc.ObtenerArbol(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, arbol)
}

// CreateItem agrega un item al arbol.
// POST /api/v1/presupuestos/:id/items
func (h *PresupuestoHandler) CreateItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del presupuesto es requerido")
		return
	}

	var req service.CrearItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	item, err := h.svc.CrearItem(c.Request.Context(), id, &req)
	if err != nil {
		RenderError(c, err)
		return
	}

	Created(c, item)
}

// UpdateItem modifica un item.
// PUT /api/v1/presupuestos/:id/items/:itemId
func (h *PresupuestoHandler) UpdateItem(c *gin.Context) {
	id := c.Param("id")
	itemID := c.Param("itemId")
	if id == "" || itemID == "" {
		BadRequest(c, "El id del presupuesto y del item son requeridos")
		return
	}

	var req service.ActualizarItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	item, err := h.svc.ActualizarItem(c.Request.Context(), id, itemID, &req)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, item)
}

// DeleteItem elimina un item y su subarbol.
// DELETE /api/v1/presupuestos/:id/items/:itemId
func (h *PresupuestoHandler) DeleteItem(c *gin.Context) {
	id := c.Param("id")
	itemID := c.Param("itemId")
	if id == "" || itemID == "" {
		BadRequest(c, "El id del presupuesto y del item son requeridos")
		return
	}

	if err := h.svc.EliminarItem(c.Request.Context(), id, itemID); err != nil {
		RenderError(c, err)
		return
	}

	Success(c, nil)
}

// Aprobar congela el presupuesto.
// POST /api/v1/presupuestos/:id/aprobar
func (h *PresupuestoHandler) Aprobar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del presupuesto es requerido")
		return
	}

	p, err := h.svc.Aprobar(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, p)
}

// ControlCostos devuelve el tablero de avance contra presupuesto.
// GET /api/v1/presupuestos/:id/control-costos
func (h *PresupuestoHandler) ControlCostos(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del presupuesto es requerido")
		return
	}

	filas, err := h.svc.ControlCostos(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, gin.H{"items": filas})
}

// Export descarga el presupuesto como hoja de calculo.
// GET /api/v1/presupuestos/:id/export
func (h *PresupuestoHandler) Export(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del presupuesto es requerido")
		return
	}

	f, err := h.svc.ExportarExcel(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}

	nombre := fmt.Sprintf("presupuesto_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+nombre)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
