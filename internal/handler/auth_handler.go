package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/carleetho/budgetpro/internal/service"
)

// AuthHandler expone el inicio de sesion y la gestion de tokens.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login valida credenciales y responde el par de tokens.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	usuario, tokens, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, gin.H{"usuario": usuario, "tokens": tokens})
}

// Register da de alta una cuenta.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegistrarInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	usuario, err := h.svc.Registrar(c.Request.Context(), &req)
	if err != nil {
		RenderError(c, err)
		return
	}

	Created(c, usuario)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh canjea un refresh token por un par nuevo.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	tokens, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, tokens)
}

// Logout revoca el refresh token.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Cuerpo de la solicitud no valido: "+err.Error())
		return
	}

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		RenderError(c, err)
		return
	}

	Success(c, nil)
}

// Me devuelve el usuario autenticado.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	usuario, err := h.svc.Me(c.Request.Context(), GetUserID(c))
	if err != nil {
		RenderError(c, err)
		return
	}

	Success(c, usuario)
}
