package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/carleetho/budgetpro/internal/service"
)

// RecursoHandler expone el catalogo de insumos.
type RecursoHandler struct {
	svc *service.RecursoService
}

func NewRecursoHandler(svc *service.RecursoService) *RecursoHandler {
	return &RecursoHandler{svc: svc}
}

// Create da de alta un recurso.
// POST /api/v1/recursos
func (h *RecursoHandler) Create(c *gin.Context) {
	var req service.CrearRecursoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	recurso, err := h.svc.Crear(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}

	Created(c, recurso)
}

// Get devuelve un recurso.
// GET /api/v1/recursos/:id
func (h *RecursoHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del recurso es requerido")
		return
	}

	recurso, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, recurso)
}

// Update modifica un recurso del catalogo.
// PUT /api/v1/recursos/:id
func (h *RecursoHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "El id del recurso es requerido")
		return
	}

	var req service.ActualizarRecursoInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	recurso, err := h.svc.Actualizar(c.Request.Context(), id, &req)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, recurso)
}

// Search busca recursos activos por termino y tipo.
// GET /api/v1/recursos/search?q=cemento&tipo=MATERIAL
func (h *RecursoHandler) Search(c *gin.Context) {
	recursos, err := h.svc.Buscar(c.Request.Context(), c.Query("q"), c.Query("tipo"))
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, gin.H{"items": recursos})
}
