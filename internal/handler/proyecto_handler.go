package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/carleetho/budgetpro/internal/service"
)

// ProyectoHandler expone los proyectos de obra.
type ProyectoHandler struct {
	svc *service.ProyectoService
}

func NewProyectoHandler(svc *service.ProyectoService) *ProyectoHandler {
	return &ProyectoHandler{svc: svc}
}

// Create crea un proyecto con su presupuesto base.
// POST /api/v1/proyectos
func (h *ProyectoHandler) Create(c *gin.Context) {
	var req service.CrearProyectoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	proyecto, err := h.svc.Crear(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}

	Created(c, proyecto)
}

// Get devuelve un proyecto con sus presupuestos.
// GET /api/v1/proyectos/:id
func (h *ProyectoHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del proyecto es requerido")
		return
	}

	proyecto, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, proyecto)
}

// List devuelve los proyectos paginados.
// GET /api/v1/proyectos?estado=EJECUCION&page=1&page_size=20
func (h *ProyectoHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	proyectos, total, err := h.svc.Listar(c.Request.Context(), c.Query("estado"), page, pageSize)
	if err != nil {
		RenderError(c, err)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: proyectos,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// Update modifica un proyecto.
// PUT /api/v1/proyectos/:id
func (h *ProyectoHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del proyecto es requerido")
		return
	}

	var req service.ActualizarProyectoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	proyecto, err := h.svc.Actualizar(c.Request.Context(), id, &req)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, proyecto)
}

// Delete elimina un proyecto.
// DELETE /api/v1/proyectos/:id
func (h *ProyectoHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del proyecto es requerido")
		return
	}

	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		RenderError(c, err)
		return
	}

	Success(c, nil)
}
