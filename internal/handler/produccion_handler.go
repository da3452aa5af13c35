package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/carleetho/budgetpro/internal/service"
)

// ProduccionHandler expone los reportes diarios de produccion.
type ProduccionHandler struct {
	svc *service.ProduccionService
}

func NewProduccionHandler(svc *service.ProduccionService) *ProduccionHandler {
	return &ProduccionHandler{svc: svc}
}

// Create registra un reporte diario del proyecto.
// POST /api/v1/proyectos/:id/reportes
func (h *ProduccionHandler) Create(c *gin.Context) {
	proyectoID := c.Param("id")
	if proyectoID == "" {
		BadRequest(c, "El id del proyecto es requerido")
		return
	}

	var req service.CrearReporteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	reporte, err := h.svc.CrearReporte(c.Request.Context(), proyectoID, &req, GetUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}

	Created(c, reporte)
}

// Get devuelve un reporte con su detalle.
// GET /api/v1/reportes/:id
func (h *ProduccionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del reporte es requerido")
		return
	}

	reporte, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, reporte)
}

// List devuelve los reportes de un proyecto.
// GET /api/v1/proyectos/:id/reportes
func (h *ProduccionHandler) List(c *gin.Context) {
	proyectoID := c.Param("id")
	if proyectoID == "" {
		BadRequest(c, "El id del proyecto es requerido")
		return
	}

	reportes, err := h.svc.Listar(c.Request.Context(), proyectoID)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, gin.H{"items": reportes})
}

// Update corrige un reporte pendiente.
// PUT /api/v1/reportes/:id
func (h *ProduccionHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del reporte es requerido")
		return
	}

	var req service.ActualizarReporteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	reporte, err := h.svc.Actualizar(c.Request.Context(), id, &req)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, reporte)
}

// Aprobar congela un reporte pendiente.
// POST /api/v1/reportes/:id/aprobar
func (h *ProduccionHandler) Aprobar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del reporte es requerido")
		return
	}

	reporte, err := h.svc.Aprobar(c.Request.Context(), id, GetUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, reporte)
}

// Rechazar descarta un reporte pendiente.
// POST /api/v1/reportes/:id/rechazar
func (h *ProduccionHandler) Rechazar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del reporte es requerido")
		return
	}

	// El motivo es opcional; se admite cuerpo vacio.
	var req struct {
		Motivo string `json:"motivo"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
			return
		}
	}

	reporte, err := h.svc.Rechazar(c.Request.Context(), id, GetUserID(c), req.Motivo)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, reporte)
}
