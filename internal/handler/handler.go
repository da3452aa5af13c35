package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carleetho/budgetpro/internal/repository"
	"github.com/carleetho/budgetpro/internal/service"
)

// Handlers agrupa los handlers HTTP del API.
type Handlers struct {
	Auth        *AuthHandler
	Proyecto    *ProyectoHandler
	Presupuesto *PresupuestoHandler
	APU         *APUHandler
	Recurso     *RecursoHandler
	Produccion  *ProduccionHandler
}

// NewHandlers crea el conjunto de handlers sobre los servicios.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(svc.Auth),
		Proyecto:    NewProyectoHandler(svc.Proyecto),
		Presupuesto: NewPresupuestoHandler(svc.Presupuesto),
		APU:         NewAPUHandler(svc.APU),
		Recurso:     NewRecursoHandler(svc.Recurso),
		Produccion:  NewProduccionHandler(svc.Produccion),
	}
}

// Response es el sobre comun de todas las respuestas.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse es el sobre de las respuestas paginadas.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination describe la pagina devuelta.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Success responde 200 con datos.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created responde 201 con datos.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error responde con un codigo de negocio; el status HTTP son sus tres
// primeros digitos.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest responde un error de parametros.
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized responde falta de autenticacion.
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// NotFound responde recurso inexistente.
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict responde un conflicto de estado.
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError responde un error del servidor.
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RenderError traduce los errores de servicio al sobre comun: errores de
// negocio conservan su codigo, ErrNotFound es 404 y el resto es 500.
func RenderError(c *gin.Context, err error) {
	if en, ok := service.EsErrorNegocio(err); ok {
		Error(c, en.Codigo, en.Mensaje)
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c, "El recurso solicitado no existe")
		return
	}
	InternalError(c, err.Error())
}

// GetUserID devuelve el id del usuario autenticado.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination lee los parametros de paginacion del query string.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
