package handler

import (
	"net/http"
	"testing"

	"github.com/carleetho/budgetpro/internal/middleware"
	"github.com/carleetho/budgetpro/internal/model/entity"
	"github.com/carleetho/budgetpro/internal/repository"
	"github.com/carleetho/budgetpro/internal/service"
	"github.com/carleetho/budgetpro/internal/testutil"
)

func setupPresupuestoTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	presupuestoSvc := service.NewPresupuestoService(repos.Presupuesto, repos.Proyecto, repos.Produccion)
	apuSvc := service.NewAPUService(repos.APU, repos.Presupuesto, repos.Recurso, presupuestoSvc)
	h := NewPresupuestoHandler(presupuestoSvc)
	apuHandler := NewAPUHandler(apuSvc)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/presupuestos/:id/arbol", h.GetArbol)
	api.POST("/presupuestos/:id/items", h.CreateItem)
	api.PUT("/presupuestos/:id/items/:itemId", h.UpdateItem)
	api.DELETE("/presupuestos/:id/items/:itemId", h.DeleteItem)
	api.POST("/presupuestos/:id/aprobar", middleware.RequireRol("admin"), h.Aprobar)
	api.GET("/presupuestos/:id/control-costos", h.ControlCostos)
	api.PUT("/presupuestos/:id/partidas/:partidaId/apu", apuHandler.Save)
	api.GET("/partidas/:id/apu", apuHandler.Get)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestCrearItemsYObtenerArbol(t *testing.T) {
	env := setupPresupuestoTest(t)
	token := testutil.DefaultTestToken()
	_, pre := testutil.SeedProyecto(t, env.DB, "proy-arb-001", "Obra Arbol")

	// Capitulo raiz
	w := testutil.DoRequest(env.Router, "POST",
		"/api/v1/presupuestos/"+pre.ID+"/items",
		map[string]interface{}{
			"codigo":      "01",
			"descripcion": "OBRAS PRELIMINARES",
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	cap := resp["data"].(map[string]interface{})
	if cap["nivel"] != entity.NivelCapitulo {
		t.Errorf("Expected nivel CAPITULO, got %v", cap["nivel"])
	}
	capID := cap["id"].(string)

	// Subcapitulo bajo el capitulo
	w2 := testutil.DoRequest(env.Router, "POST",
		"/api/v1/presupuestos/"+pre.ID+"/items",
		map[string]interface{}{
			"padreId":     capID,
			"codigo":      "01.01",
			"descripcion": "TRABAJOS PROVISIONALES",
		}, token)
	if w2.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w2.Code, w2.Body.String())
	}
	sub := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	if sub["nivel"] != entity.NivelSubcapitulo {
		t.Errorf("Expected nivel SUBCAPITULO, got %v", sub["nivel"])
	}
	subID := sub["id"].(string)

	// Partida bajo el subcapitulo
	w3 := testutil.DoRequest(env.Router, "POST",
		"/api/v1/presupuestos/"+pre.ID+"/items",
		map[string]interface{}{
			"padreId":        subID,
			"codigo":         "01.01.01",
			"descripcion":    "Cartel de obra",
			"unidad":         "und",
			"metrado":        2.0,
			"precioUnitario": 625.0,
		}, token)
	if w3.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w3.Code, w3.Body.String())
	}
	partida := testutil.ParseResponse(w3)["data"].(map[string]interface{})
	if partida["nivel"] != entity.NivelPartida {
		t.Errorf("Expected nivel PARTIDA, got %v", partida["nivel"])
	}
	if partida["parcial"].(float64) != 1250.0 {
		t.Errorf("Expected parcial 1250, got %v", partida["parcial"])
	}
	partidaID := partida["id"].(string)

	// Una partida no admite hijos
	w4 := testutil.DoRequest(env.Router, "POST",
		"/api/v1/presupuestos/"+pre.ID+"/items",
		map[string]interface{}{
			"padreId":     partidaID,
			"codigo":      "x",
			"descripcion": "no debe existir",
		}, token)
	if w4.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for child of partida, got %d: %s", w4.Code, w4.Body.String())
	}

	// El arbol anidado refleja la jerarquia y los parciales propagados
	w5 := testutil.DoRequest(env.Router, "GET",
		"/api/v1/presupuestos/"+pre.ID+"/arbol", nil, token)
	if w5.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w5.Code, w5.Body.String())
	}
	data := testutil.ParseResponse(w5)["data"].(map[string]interface{})
	if data["costoDirecto"].(float64) != 1250.0 {
		t.Errorf("Expected costoDirecto 1250, got %v", data["costoDirecto"])
	}
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 root item, got %d", len(items))
	}
	raiz := items[0].(map[string]interface{})
	if raiz["parcial"].(float64) != 1250.0 {
		t.Errorf("Expected root parcial 1250, got %v", raiz["parcial"])
	}
	hijos := raiz["hijos"].([]interface{})
	if len(hijos) != 1 {
		t.Fatalf("Expected 1 child, got %d", len(hijos))
	}
}

func TestActualizarItemRecalculaAncestros(t *testing.T) {
	env := setupPresupuestoTest(t)
	token := testutil.DefaultTestToken()
	_, pre := testutil.SeedProyecto(t, env.DB, "proy-rec-001", "Obra Recalculo")

	cap := testutil.SeedItem(t, env.DB, &entity.ItemPresupuesto{
		ID: "cap-rec-1", PresupuestoID: pre.ID, Codigo: "01",
		Descripcion: "ESTRUCTURAS", Nivel: entity.NivelCapitulo, Orden: 0,
	})
	testutil.SeedItem(t, env.DB, &entity.ItemPresupuesto{
		ID: "par-rec-1", PresupuestoID: pre.ID, PadreID: cap.ID, Codigo: "01.01",
		Descripcion: "Concreto fc=210", Nivel: entity.NivelPartida,
		Unidad: "m3", Metrado: 10, PrecioUnitario: 100, Orden: 0,
	})

	w := testutil.DoRequest(env.Router, "PUT",
		"/api/v1/presupuestos/"+pre.ID+"/items/par-rec-1",
		map[string]interface{}{"metrado": 20.0}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	item := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if item["parcial"].(float64) != 2000.0 {
		t.Errorf("Expected parcial 2000, got %v", item["parcial"])
	}

	// El parcial del capitulo queda persistido
	var capRow entity.ItemPresupuesto
	if err := env.DB.First(&capRow, "id = ?", cap.ID).Error; err != nil {
		t.Fatalf("Failed to reload capitulo: %v", err)
	}
	if capRow.Parcial != 2000.0 {
		t.Errorf("Expected capitulo parcial 2000, got %v", capRow.Parcial)
	}
}

func TestEliminarItemRemueveSubarbol(t *testing.T) {
	env := setupPresupuestoTest(t)
	token := testutil.DefaultTestToken()
	_, pre := testutil.SeedProyecto(t, env.DB, "proy-del-001", "Obra Borrado")

	cap := testutil.SeedItem(t, env.DB, &entity.ItemPresupuesto{
		ID: "cap-del-1", PresupuestoID: pre.ID, Codigo: "01",
		Descripcion: "ARQUITECTURA", Nivel: entity.NivelCapitulo, Orden: 0,
	})
	sub := testutil.SeedItem(t, env.DB, &entity.ItemPresupuesto{
		ID: "sub-del-1", PresupuestoID: pre.ID, PadreID: cap.ID, Codigo: "01.01",
		Descripcion: "Muros", Nivel: entity.NivelSubcapitulo, Orden: 0,
	})
	testutil.SeedItem(t, env.DB, &entity.ItemPresupuesto{
		ID: "par-del-1", PresupuestoID: pre.ID, PadreID: sub.ID, Codigo: "01.01.01",
		Descripcion: "Muro de ladrillo", Nivel: entity.NivelPartida,
		Unidad: "m2", Metrado: 50, PrecioUnitario: 80, Orden: 0,
	})

	w := testutil.DoRequest(env.Router, "DELETE",
		"/api/v1/presupuestos/"+pre.ID+"/items/"+cap.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.ItemPresupuesto{}).Where("presupuesto_id = ?", pre.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected 0 items after subtree delete, got %d", count)
	}

	// Un id inexistente no es un error
	w2 := testutil.DoRequest(env.Router, "DELETE",
		"/api/v1/presupuestos/"+pre.ID+"/items/no-existe", nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200 for missing id, got %d: %s", w2.Code, w2.Body.String())
	}
}

func TestPresupuestoAprobadoEsInmutable(t *testing.T) {
	env := setupPresupuestoTest(t)
	token := testutil.DefaultTestToken()
	_, pre := testutil.SeedProyecto(t, env.DB, "proy-apr-001", "Obra Aprobada")

	// Solo un admin aprueba
	residente := testutil.GenerateTestToken("test-user-003", "Residente", "residente@test.com", "residente")
	wf := testutil.DoRequest(env.Router, "POST",
		"/api/v1/presupuestos/"+pre.ID+"/aprobar", nil, residente)
	if wf.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for non-admin, got %d: %s", wf.Code, wf.Body.String())
	}

	w := testutil.DoRequest(env.Router, "POST",
		"/api/v1/presupuestos/"+pre.ID+"/aprobar", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Aprobar dos veces es un conflicto
	w2 := testutil.DoRequest(env.Router, "POST",
		"/api/v1/presupuestos/"+pre.ID+"/aprobar", nil, token)
	if w2.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w2.Code, w2.Body.String())
	}

	// Y el arbol ya no admite items nuevos
	w3 := testutil.DoRequest(env.Router, "POST",
		"/api/v1/presupuestos/"+pre.ID+"/items",
		map[string]interface{}{"codigo": "01", "descripcion": "tarde"}, token)
	if w3.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w3.Code, w3.Body.String())
	}
}

func TestGuardarAPUActualizaPartida(t *testing.T) {
	env := setupPresupuestoTest(t)
	token := testutil.DefaultTestToken()
	_, pre := testutil.SeedProyecto(t, env.DB, "proy-apu-001", "Obra APU")

	cap := testutil.SeedItem(t, env.DB, &entity.ItemPresupuesto{
		ID: "cap-apu-1", PresupuestoID: pre.ID, Codigo: "01",
		Descripcion: "ESTRUCTURAS", Nivel: entity.NivelCapitulo, Orden: 0,
	})
	testutil.SeedItem(t, env.DB, &entity.ItemPresupuesto{
		ID: "par-apu-1", PresupuestoID: pre.ID, PadreID: cap.ID, Codigo: "01.01",
		Descripcion: "Excavacion manual", Nivel: entity.NivelPartida,
		Unidad: "m3", Metrado: 10, PrecioUnitario: 0, Orden: 0,
	})
	testutil.SeedRecurso(t, env.DB, "rec-apu-1", "MO-001", "Peon", entity.TipoManoDeObra, 25.50)

	w := testutil.DoRequest(env.Router, "PUT",
		"/api/v1/presupuestos/"+pre.ID+"/partidas/par-apu-1/apu",
		map[string]interface{}{
			"detalles": []map[string]interface{}{
				{"recursoId": "rec-apu-1", "rendimiento": 7.5},
			},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	apu := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if apu["costoDirecto"].(float64) != 191.25 {
		t.Errorf("Expected costoDirecto 191.25, got %v", apu["costoDirecto"])
	}

	// El costo directo queda como precio unitario de la partida
	var partida entity.ItemPresupuesto
	if err := env.DB.First(&partida, "id = ?", "par-apu-1").Error; err != nil {
		t.Fatalf("Failed to reload partida: %v", err)
	}
	if partida.PrecioUnitario != 191.25 {
		t.Errorf("Expected precioUnitario 191.25, got %v", partida.PrecioUnitario)
	}
	if partida.Parcial != 1912.5 {
		t.Errorf("Expected parcial 1912.5, got %v", partida.Parcial)
	}

	// La vista agrupa el detalle por tipo de recurso
	w2 := testutil.DoRequest(env.Router, "GET", "/api/v1/partidas/par-apu-1/apu", nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	vista := testutil.ParseResponse(w2)["data"].(map[string]interface{})
	grupos := vista["grupos"].(map[string]interface{})
	manoDeObra := grupos[entity.TipoManoDeObra].([]interface{})
	if len(manoDeObra) != 1 {
		t.Errorf("Expected 1 linea de mano de obra, got %d", len(manoDeObra))
	}
}
