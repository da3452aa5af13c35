package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carleetho/budgetpro/internal/middleware"
	"github.com/carleetho/budgetpro/internal/model/entity"
)

const (
	TestSchema = "test_budgetpro"
	JWTSecret  = "budgetpro-jwt-secret-for-tests"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "budgetpro")
	password := getEnv("DB_PASSWORD", "budgetpro")
	dbname := getEnv("DB_NAME", "budgetpro")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in the DSN so all pooled connections use the test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.Usuario{},
		&entity.Proyecto{},
		&entity.Presupuesto{},
		&entity.ItemPresupuesto{},
		&entity.Recurso{},
		&entity.AnalisisUnitario{},
		&entity.DetalleAPU{},
		&entity.ReporteProduccion{},
		&entity.DetalleRPC{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, email, rol string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"rol":   rol,
		"iss":   "budgetpro",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default admin test user
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "Test Admin", "admin@test.com", "admin")
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedProyecto creates a project with its base budget
func SeedProyecto(t *testing.T, db *gorm.DB, id, nombre string) (*entity.Proyecto, *entity.Presupuesto) {
	t.Helper()
	now := time.Now()
	proyecto := &entity.Proyecto{
		ID:        id,
		Nombre:    nombre,
		Estado:    entity.EstadoProyectoEjecucion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(proyecto).Error; err != nil {
		t.Fatalf("Failed to seed proyecto: %v", err)
	}
	presupuesto := &entity.Presupuesto{
		ID:         id + "-pre",
		ProyectoID: id,
		Nombre:     "Presupuesto Base",
		Estado:     entity.EstadoPresupuestoBorrador,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(presupuesto).Error; err != nil {
		t.Fatalf("Failed to seed presupuesto: %v", err)
	}
	return proyecto, presupuesto
}

// SeedItem creates a budget tree node
func SeedItem(t *testing.T, db *gorm.DB, item *entity.ItemPresupuesto) *entity.ItemPresupuesto {
	t.Helper()
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Nivel == entity.NivelPartida {
		item.Parcial = item.Metrado * item.PrecioUnitario
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to seed item: %v", err)
	}
	return item
}

// SeedRecurso creates a catalog resource
func SeedRecurso(t *testing.T, db *gorm.DB, id, codigo, nombre, tipo string, precio float64) *entity.Recurso {
	t.Helper()
	now := time.Now()
	recurso := &entity.Recurso{
		ID:         id,
		Codigo:     codigo,
		Nombre:     nombre,
		Tipo:       tipo,
		Unidad:     "und",
		PrecioBase: precio,
		Estado:     entity.EstadoRecursoActivo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(recurso).Error; err != nil {
		t.Fatalf("Failed to seed recurso: %v", err)
	}
	return recurso
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
