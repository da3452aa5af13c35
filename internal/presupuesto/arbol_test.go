package presupuesto

import (
	"math"
	"testing"

	"github.com/carleetho/budgetpro/internal/model/entity"
)

// arbolDemo arma el bosque de ejemplo: capitulo 1 con dos partidas,
// capitulo 2 con un subcapitulo (dos partidas) y una partida directa.
func arbolDemo() []entity.ItemPresupuesto {
	return []entity.ItemPresupuesto{
		{
			ID: "1", Codigo: "1", Descripcion: "OBRAS PRELIMINARES", Nivel: entity.NivelCapitulo,
			Hijos: []entity.ItemPresupuesto{
				{ID: "1.1", Codigo: "1.01", Descripcion: "Limpieza y desmonte", Nivel: entity.NivelPartida,
					Unidad: "m2", Metrado: 500, PrecioUnitario: 2.5, Parcial: 1250, PadreID: "1"},
				{ID: "1.2", Codigo: "1.02", Descripcion: "Nivelacion y compactacion", Nivel: entity.NivelPartida,
					Unidad: "m2", Metrado: 500, PrecioUnitario: 3.0, Parcial: 1500, PadreID: "1"},
			},
		},
		{
			ID: "2", Codigo: "2", Descripcion: "CIMENTACIONES", Nivel: entity.NivelCapitulo,
			Hijos: []entity.ItemPresupuesto{
				{ID: "2.1", Codigo: "2.01", Descripcion: "Excavacion manual", Nivel: entity.NivelSubcapitulo, PadreID: "2",
					Hijos: []entity.ItemPresupuesto{
						{ID: "2.1.1", Codigo: "2.01.01", Descripcion: "Excavacion en tierra", Nivel: entity.NivelPartida,
							Unidad: "m3", Metrado: 120, PrecioUnitario: 8.5, Parcial: 1020, PadreID: "2.1"},
						{ID: "2.1.2", Codigo: "2.01.02", Descripcion: "Excavacion en roca", Nivel: entity.NivelPartida,
							Unidad: "m3", Metrado: 30, PrecioUnitario: 25.0, Parcial: 750, PadreID: "2.1"},
					},
				},
				{ID: "2.2", Codigo: "2.02", Descripcion: "Concreto estructural", Nivel: entity.NivelPartida,
					Unidad: "m3", Metrado: 45, PrecioUnitario: 150.0, Parcial: 6750, PadreID: "2"},
			},
		},
	}
}

func casiIgual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuscarPorID(t *testing.T) {
	arbol := arbolDemo()

	nodo, ok := BuscarPorID(arbol, "2.1.2")
	if !ok {
		t.Fatal("expected to find node 2.1.2")
	}
	if nodo.Descripcion != "Excavacion en roca" {
		t.Fatalf("unexpected node: %+v", nodo)
	}

	// Lectura idempotente: el mismo nodo por valor en llamadas repetidas.
	otra, _ := BuscarPorID(arbol, "2.1.2")
	if otra.ID != nodo.ID || otra.Parcial != nodo.Parcial || otra.Codigo != nodo.Codigo {
		t.Fatalf("lookup not idempotent: %+v vs %+v", nodo, otra)
	}

	if _, ok := BuscarPorID(arbol, "no-existe"); ok {
		t.Fatal("expected not found for unknown id")
	}
}

func TestNivelHijo(t *testing.T) {
	casos := map[string]string{
		entity.NivelCapitulo:    entity.NivelSubcapitulo,
		entity.NivelSubcapitulo: entity.NivelPartida,
		entity.NivelPartida:     entity.NivelPartida,
		"":                      entity.NivelPartida,
	}
	for padre, want := range casos {
		if got := NivelHijo(padre); got != want {
			t.Fatalf("NivelHijo(%q) = %q, want %q", padre, got, want)
		}
	}
}

func TestInsertarHijoComoRaiz(t *testing.T) {
	arbol := arbolDemo()
	nuevo := entity.ItemPresupuesto{ID: "3", Codigo: "3", Descripcion: "ESTRUCTURA", Nivel: entity.NivelCapitulo}

	resultado := InsertarHijo(arbol, "", nuevo)
	if len(resultado) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(resultado))
	}
	if resultado[2].ID != "3" {
		t.Fatalf("new root must be appended last, got %s", resultado[2].ID)
	}
	if len(arbol) != 2 {
		t.Fatal("original forest must not change")
	}
}

// Escenario B: insertar bajo un subcapitulo dos niveles adentro agrega al
// final de sus hijos y no clona los subarboles ajenos.
func TestInsertarHijoEnSubcapitulo(t *testing.T) {
	arbol := arbolDemo()
	nueva := entity.ItemPresupuesto{ID: "2.1.3", Codigo: "2.01.03", Descripcion: "Relleno compactado",
		Nivel: entity.NivelPartida, PadreID: "2.1"}

	resultado := InsertarHijo(arbol, "2.1", nueva)

	sub, ok := BuscarPorID(resultado, "2.1")
	if !ok {
		t.Fatal("subchapter 2.1 missing after insert")
	}
	if len(sub.Hijos) != 3 || sub.Hijos[2].ID != "2.1.3" {
		t.Fatalf("new node must be the last child of 2.1, got %+v", sub.Hijos)
	}

	// El capitulo 1 no esta en el camino mutado: su slice de hijos debe ser
	// exactamente el mismo arreglo que en el bosque original.
	if &resultado[0].Hijos[0] != &arbol[0].Hijos[0] {
		t.Fatal("untouched sibling subtree was cloned")
	}

	// El original queda intacto.
	subOrig, _ := BuscarPorID(arbol, "2.1")
	if len(subOrig.Hijos) != 2 {
		t.Fatal("original forest must not change")
	}
}

func TestInsertarHijoPadreInexistente(t *testing.T) {
	arbol := arbolDemo()
	resultado := InsertarHijo(arbol, "no-existe", entity.ItemPresupuesto{ID: "x"})
	if len(resultado) != len(arbol) {
		t.Fatal("insert under unknown parent must leave the forest unchanged")
	}
	if _, ok := BuscarPorID(resultado, "x"); ok {
		t.Fatal("node must not be inserted anywhere")
	}
}

func TestInsercionPreservaOrden(t *testing.T) {
	arbol := arbolDemo()
	for i, id := range []string{"a", "b", "c"} {
		arbol = InsertarHijo(arbol, "1", entity.ItemPresupuesto{ID: id, Nivel: entity.NivelPartida, Orden: i})
	}
	cap1, _ := BuscarPorID(arbol, "1")
	ids := []string{}
	for _, h := range cap1.Hijos {
		ids = append(ids, h.ID)
	}
	want := []string{"1.1", "1.2", "a", "b", "c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("children order %v, want %v", ids, want)
		}
	}
}

func TestReemplazarPorID(t *testing.T) {
	arbol := arbolDemo()

	resultado := ReemplazarPorID(arbol, "1.1", func(n entity.ItemPresupuesto) entity.ItemPresupuesto {
		n.Metrado = 600
		n.Parcial = n.Metrado * n.PrecioUnitario
		return n
	})

	nodo, _ := BuscarPorID(resultado, "1.1")
	if !casiIgual(nodo.Parcial, 1500) {
		t.Fatalf("parcial = %v, want 1500", nodo.Parcial)
	}

	orig, _ := BuscarPorID(arbol, "1.1")
	if !casiIgual(orig.Parcial, 1250) {
		t.Fatal("original node must not change")
	}
}

func TestReemplazarConservaHijos(t *testing.T) {
	arbol := arbolDemo()

	resultado := ReemplazarPorID(arbol, "2.1", func(n entity.ItemPresupuesto) entity.ItemPresupuesto {
		// Reemplazo total de campos escalares sin tocar Hijos.
		return entity.ItemPresupuesto{ID: n.ID, Codigo: n.Codigo, Descripcion: "Excavaciones", Nivel: n.Nivel, PadreID: n.PadreID}
	})

	nodo, _ := BuscarPorID(resultado, "2.1")
	if nodo.Descripcion != "Excavaciones" {
		t.Fatalf("scalar fields not replaced: %+v", nodo)
	}
	if len(nodo.Hijos) != 2 {
		t.Fatalf("children must be preserved when updater returns nil Hijos, got %d", len(nodo.Hijos))
	}
}

func TestReemplazarIDInexistente(t *testing.T) {
	arbol := arbolDemo()
	resultado := ReemplazarPorID(arbol, "no-existe", func(n entity.ItemPresupuesto) entity.ItemPresupuesto {
		n.Descripcion = "tocado"
		return n
	})
	if total := Rollup(resultado); !casiIgual(total, Rollup(arbol)) {
		t.Fatal("replace of unknown id must be a no-op")
	}
}

// Escenario C: eliminar el capitulo 2 remueve todo su subarbol.
func TestEliminarPorIDRemueveSubarbol(t *testing.T) {
	arbol := arbolDemo()
	resultado := EliminarPorID(arbol, "2")

	if len(resultado) != 1 {
		t.Fatalf("expected 1 root after delete, got %d", len(resultado))
	}
	for _, id := range []string{"2", "2.1", "2.1.1", "2.1.2", "2.2"} {
		if _, ok := BuscarPorID(resultado, id); ok {
			t.Fatalf("descendant %s still reachable after subtree delete", id)
		}
	}
	if _, ok := BuscarPorID(resultado, "1.2"); !ok {
		t.Fatal("siblings outside the deleted subtree must survive")
	}
}

func TestEliminarPorIDNodoIntermedio(t *testing.T) {
	arbol := arbolDemo()
	resultado := EliminarPorID(arbol, "2.1")

	if _, ok := BuscarPorID(resultado, "2.1.1"); ok {
		t.Fatal("children of removed node must be discarded, not re-parented")
	}
	cap2, _ := BuscarPorID(resultado, "2")
	if len(cap2.Hijos) != 1 || cap2.Hijos[0].ID != "2.2" {
		t.Fatalf("remaining children of 2: %+v", cap2.Hijos)
	}
}

func TestEliminarIDInexistenteEsNoOp(t *testing.T) {
	arbol := arbolDemo()
	resultado := EliminarPorID(arbol, "no-existe")
	if len(resultado) != len(arbol) {
		t.Fatal("delete of unknown id must return the forest unchanged")
	}
	if !casiIgual(Rollup(resultado), Rollup(arbol)) {
		t.Fatal("delete of unknown id must not alter totals")
	}
}

// Escenario A: capitulo con partidas de 1250 y 1500 suma 2750.
func TestRollup(t *testing.T) {
	arbol := arbolDemo()

	soloCap1 := []entity.ItemPresupuesto{arbol[0]}
	if total := Rollup(soloCap1); !casiIgual(total, 2750) {
		t.Fatalf("rollup chapter 1 = %v, want 2750", total)
	}

	// 1250 + 1500 + 1020 + 750 + 6750
	if total := Rollup(arbol); !casiIgual(total, 11270) {
		t.Fatalf("rollup forest = %v, want 11270", total)
	}
}

func TestRollupIgnoraParcialesDeAncestros(t *testing.T) {
	arbol := arbolDemo()
	// Un parcial de capitulo desincronizado no debe afectar el rollup.
	arbol[0].Parcial = 999999
	if total := Rollup(arbol); !casiIgual(total, 11270) {
		t.Fatalf("rollup must recompute from leaves, got %v", total)
	}
}

func TestRecalcularAncestros(t *testing.T) {
	arbol := arbolDemo()
	// Desincronizar todos los agregados.
	arbol[0].Parcial = 0
	arbol[1].Parcial = 0
	arbol[1].Hijos[0].Parcial = 0

	resultado := RecalcularAncestros(arbol)

	cap1, _ := BuscarPorID(resultado, "1")
	if !casiIgual(cap1.Parcial, 2750) {
		t.Fatalf("chapter 1 parcial = %v, want 2750", cap1.Parcial)
	}
	sub, _ := BuscarPorID(resultado, "2.1")
	if !casiIgual(sub.Parcial, 1770) {
		t.Fatalf("subchapter 2.1 parcial = %v, want 1770", sub.Parcial)
	}
	cap2, _ := BuscarPorID(resultado, "2")
	if !casiIgual(cap2.Parcial, 8520) {
		t.Fatalf("chapter 2 parcial = %v, want 8520", cap2.Parcial)
	}
}

func TestAplanar(t *testing.T) {
	hojas := Aplanar(arbolDemo())
	want := []string{"1.1", "1.2", "2.1.1", "2.1.2", "2.2"}
	if len(hojas) != len(want) {
		t.Fatalf("expected %d leaves, got %d", len(want), len(hojas))
	}
	for i, h := range hojas {
		if h.ID != want[i] {
			t.Fatalf("leaf order %d: got %s, want %s", i, h.ID, want[i])
		}
		if !h.EsHoja() {
			t.Fatalf("non-leaf %s in flattened output", h.ID)
		}
	}
}

func TestReconciliar(t *testing.T) {
	local := arbolDemo()
	local = EliminarPorID(local, "2")

	remoto := arbolDemo()
	// El servidor manda agregados desincronizados.
	remoto[1].Parcial = 1

	resultado := Reconciliar(local, remoto)
	if _, ok := BuscarPorID(resultado, "2.1.1"); !ok {
		t.Fatal("remote snapshot must win over local deletes")
	}
	cap2, _ := BuscarPorID(resultado, "2")
	if !casiIgual(cap2.Parcial, 8520) {
		t.Fatalf("reconcile must recompute rollups, got %v", cap2.Parcial)
	}
}

func TestConstruirArbol(t *testing.T) {
	filas := []entity.ItemPresupuesto{
		{ID: "1", Codigo: "1", Nivel: entity.NivelCapitulo, Orden: 0},
		{ID: "1.1", PadreID: "1", Codigo: "1.01", Nivel: entity.NivelPartida, Metrado: 500, PrecioUnitario: 2.5, Parcial: 1250, Orden: 0},
		{ID: "1.2", PadreID: "1", Codigo: "1.02", Nivel: entity.NivelPartida, Metrado: 500, PrecioUnitario: 3.0, Parcial: 1500, Orden: 1},
		{ID: "2", Codigo: "2", Nivel: entity.NivelCapitulo, Orden: 1},
		{ID: "2.1", PadreID: "2", Codigo: "2.01", Nivel: entity.NivelSubcapitulo, Orden: 0},
		{ID: "2.1.1", PadreID: "2.1", Codigo: "2.01.01", Nivel: entity.NivelPartida, Parcial: 1020, Orden: 0},
	}

	arbol := ConstruirArbol(filas)
	if len(arbol) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(arbol))
	}
	if arbol[0].ID != "1" || arbol[1].ID != "2" {
		t.Fatalf("root order: %s, %s", arbol[0].ID, arbol[1].ID)
	}
	if len(arbol[0].Hijos) != 2 || arbol[0].Hijos[1].ID != "1.2" {
		t.Fatalf("chapter 1 children: %+v", arbol[0].Hijos)
	}
	nodo, ok := BuscarPorID(arbol, "2.1.1")
	if !ok || nodo.PadreID != "2.1" {
		t.Fatalf("nested leaf not attached: %+v", nodo)
	}
	// Las hojas llevan hijos vacios, no nil, para serializar "hijos": [].
	if nodo.Hijos == nil {
		t.Fatal("leaf Hijos must be an empty slice, not nil")
	}
	if total := Rollup(arbol); !casiIgual(total, 3770) {
		t.Fatalf("rollup of built forest = %v, want 3770", total)
	}
}

func TestParcialDePartida(t *testing.T) {
	casos := []struct {
		metrado, precio, want float64
	}{
		{500, 2.5, 1250},
		{120, 8.5, 1020},
		{0, 150, 0},
		{33.33, 3, 99.99},
	}
	for _, c := range casos {
		arbol := []entity.ItemPresupuesto{
			{ID: "c", Nivel: entity.NivelCapitulo, Hijos: []entity.ItemPresupuesto{
				{ID: "p", Nivel: entity.NivelPartida, Metrado: c.metrado, PrecioUnitario: c.precio},
			}},
		}
		arbol = ReemplazarPorID(arbol, "p", func(n entity.ItemPresupuesto) entity.ItemPresupuesto {
			n.Parcial = n.Metrado * n.PrecioUnitario
			return n
		})
		nodo, _ := BuscarPorID(arbol, "p")
		if !casiIgual(nodo.Parcial, c.want) {
			t.Fatalf("parcial(%v, %v) = %v, want %v", c.metrado, c.precio, nodo.Parcial, c.want)
		}
	}
}
