package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/carleetho/budgetpro/internal/service"
)

// APUHandler expone los analisis de precios unitarios.
type APUHandler struct {
	svc *service.APUService
}

func NewAPUHandler(svc *service.APUService) *APUHandler {
	return &APUHandler{svc: svc}
}

// Get devuelve el analisis vigente de una partida.
// GET /api/v1/partidas/:id/apu
func (h *APUHandler) Get(c *gin.Context) {
	partidaID := c.Param("id")
	if partidaID == "" {
		BadRequest(c, "El id de la partida es requerido")
		return
	}

	vista, err := h.svc.Obtener(c.Request.Context(), partidaID)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, vista)
}

// Save reemplaza el analisis de una partida.
// PUT /api/v1/presupuestos/:id/partidas/:partidaId/apu
func (h *APUHandler) Save(c *gin.Context) {
	presupuestoID := c.Param("id")
	partidaID := c.Param("partidaId")
	if presupuestoID == "" || partidaID == "" {
		BadRequest(c, "El id del presupuesto y de la partida son requeridos")
		return
	}

	var req service.GuardarAPUInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	apu, err := h.svc.Guardar(c.Request.Context(), presupuestoID, partidaID, &req)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, apu)
}
