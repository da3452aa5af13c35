package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/carleetho/budgetpro/internal/config"
	"github.com/carleetho/budgetpro/internal/model/entity"
	"github.com/carleetho/budgetpro/internal/repository"
)

// AuthService autentica usuarios y emite tokens JWT. Los refresh tokens se
// registran en redis por jti; revocar uno es borrar su clave.
type AuthService struct {
	usuarioRepo *repository.UsuarioRepository
	rdb         *redis.Client
	cfg         *config.Config
}

func NewAuthService(usuarioRepo *repository.UsuarioRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		usuarioRepo: usuarioRepo,
		rdb:         rdb,
		cfg:         cfg,
	}
}

// TokenPair es el par de tokens emitido al iniciar sesion.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginInput es la solicitud de inicio de sesion.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegistrarInput es la solicitud de alta de usuario.
type RegistrarInput struct {
	Email    string `json:"email" binding:"required,email"`
	Nombre   string `json:"nombre" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Rol      string `json:"rol"`
}

// Login valida las credenciales y emite el par de tokens.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*entity.Usuario, *TokenPair, error) {
	usuario, err := s.usuarioRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil, &ErrorNegocio{Codigo: 40110, Mensaje: "Credenciales no validas."}
		}
		return nil, nil, err
	}
	if !usuario.Activo {
		return nil, nil, &ErrorNegocio{Codigo: 40111, Mensaje: "La cuenta esta deshabilitada."}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, &ErrorNegocio{Codigo: 40110, Mensaje: "Credenciales no validas."}
	}

	now := time.Now()
	usuario.UltimoLogin = &now
	usuario.UpdatedAt = now
	if err := s.usuarioRepo.Update(ctx, usuario); err != nil {
		return nil, nil, fmt.Errorf("registrar ultimo login: %w", err)
	}

	tokens, err := s.generarTokens(ctx, usuario)
	if err != nil {
		return nil, nil, err
	}
	return usuario, tokens, nil
}

// Registrar crea una cuenta nueva con la clave hasheada.
func (s *AuthService) Registrar(ctx context.Context, input *RegistrarInput) (*entity.Usuario, error) {
	if _, err := s.usuarioRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, &ErrorNegocio{Codigo: 40920, Mensaje: "Ya existe una cuenta con ese email."}
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	rol := input.Rol
	if rol == "" {
		rol = entity.RolUsuario
	}
	if rol != entity.RolAdmin && rol != entity.RolUsuario {
		return nil, &ErrorNegocio{Codigo: 40040, Mensaje: "Rol no valido: " + rol}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashear password: %w", err)
	}

	now := time.Now()
	usuario := &entity.Usuario{
		ID:           uuid.New().String(),
		Email:        input.Email,
		Nombre:       input.Nombre,
		PasswordHash: string(hash),
		Rol:          rol,
		Activo:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.usuarioRepo.Create(ctx, usuario); err != nil {
		return nil, fmt.Errorf("crear usuario: %w", err)
	}
	return usuario, nil
}

// RefreshToken canjea un refresh token vigente por un par nuevo. El token
// usado se revoca: cada refresh token sirve una sola vez.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, &ErrorNegocio{Codigo: 40112, Mensaje: "Refresh token no valido."}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, &ErrorNegocio{Codigo: 40112, Mensaje: "Refresh token no valido."}
	}
	if claims["type"] != "refresh" {
		return nil, &ErrorNegocio{Codigo: 40112, Mensaje: "Refresh token no valido."}
	}

	jti, _ := claims["jti"].(string)
	userID, err := s.rdb.Get(ctx, "token:refresh:"+jti).Result()
	if err != nil {
		return nil, &ErrorNegocio{Codigo: 40113, Mensaje: "El refresh token expiro o fue revocado."}
	}

	usuario, err := s.usuarioRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, &ErrorNegocio{Codigo: 40113, Mensaje: "El refresh token expiro o fue revocado."}
	}

	s.rdb.Del(ctx, "token:refresh:"+jti)

	return s.generarTokens(ctx, usuario)
}

// Logout revoca el refresh token del usuario.
func (s *AuthService) Logout(ctx context.Context, refreshTokenString string) error {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if jti, ok := claims["jti"].(string); ok {
			s.rdb.Del(ctx, "token:refresh:"+jti)
		}
	}
	return nil
}

// Me devuelve el usuario autenticado.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.Usuario, error) {
	return s.usuarioRepo.FindByID(ctx, userID)
}

func (s *AuthService) generarTokens(ctx context.Context, usuario *entity.Usuario) (*TokenPair, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":   usuario.ID,
		"uid":   usuario.ID,
		"name":  usuario.Nombre,
		"email": usuario.Email,
		"rol":   usuario.Rol,
		"iss":   s.cfg.JWT.Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWT.AccessTokenExpire).Unix(),
		"jti":   uuid.New().String(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshJti := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub":  usuario.ID,
		"type": "refresh",
		"iss":  s.cfg.JWT.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWT.RefreshTokenExpire).Unix(),
		"jti":  refreshJti,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	s.rdb.Set(ctx, "token:refresh:"+refreshJti, usuario.ID, s.cfg.JWT.RefreshTokenExpire)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}
