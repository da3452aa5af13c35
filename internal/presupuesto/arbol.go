// Package presupuesto contiene el nucleo puro del presupuesto de obra: las
// operaciones sobre el arbol de partidas (WBS) y el compositor de analisis
// de precios unitarios (APU).
//
// Todas las mutaciones del arbol son transformaciones puras: devuelven un
// bosque nuevo en lugar de modificar el recibido. Solo se clona el camino
// desde la raiz hasta el nodo mutado; los subarboles no afectados comparten
// memoria con el bosque original.
package presupuesto

import (
	"github.com/carleetho/budgetpro/internal/model/entity"
)

// BuscarPorID recorre el bosque en profundidad y devuelve el primer nodo
// cuyo ID coincida.
func BuscarPorID(arbol []entity.ItemPresupuesto, id string) (entity.ItemPresupuesto, bool) {
	for _, n := range arbol {
		if n.ID == id {
			return n, true
		}
		if hijo, ok := BuscarPorID(n.Hijos, id); ok {
			return hijo, true
		}
	}
	return entity.ItemPresupuesto{}, false
}

// NivelHijo determina el nivel de un nuevo hijo a partir del nivel del
// padre. Esta regla, no el cliente, asigna el nivel al agregar un hijo.
func NivelHijo(nivelPadre string) string {
	switch nivelPadre {
	case entity.NivelCapitulo:
		return entity.NivelSubcapitulo
	case entity.NivelSubcapitulo:
		return entity.NivelPartida
	default:
		return entity.NivelPartida
	}
}

// InsertarHijo agrega nodo al final de los hijos del nodo con ID padreID,
// este donde este en el bosque. Con padreID vacio, nodo se agrega como
// nueva raiz. Si el padre no existe, el bosque vuelve sin cambios.
func InsertarHijo(arbol []entity.ItemPresupuesto, padreID string, nodo entity.ItemPresupuesto) []entity.ItemPresupuesto {
	if padreID == "" {
		out := make([]entity.ItemPresupuesto, len(arbol), len(arbol)+1)
		copy(out, arbol)
		return append(out, nodo)
	}
	nuevo, _ := insertarEn(arbol, padreID, nodo)
	return nuevo
}

func insertarEn(nodos []entity.ItemPresupuesto, padreID string, nodo entity.ItemPresupuesto) ([]entity.ItemPresupuesto, bool) {
	for i, n := range nodos {
		if n.ID == padreID {
			out := clonarNivel(nodos)
			hijos := make([]entity.ItemPresupuesto, len(n.Hijos), len(n.Hijos)+1)
			copy(hijos, n.Hijos)
			out[i].Hijos = append(hijos, nodo)
			return out, true
		}
		if hijos, ok := insertarEn(n.Hijos, padreID, nodo); ok {
			out := clonarNivel(nodos)
			out[i].Hijos = hijos
			return out, true
		}
	}
	return nodos, false
}

// ReemplazarPorID sustituye el nodo con el ID dado por fn(nodo). Si fn
// devuelve un nodo con Hijos nil, se conservan los hijos originales; un
// slice no nil (aunque vacio) los reemplaza.
func ReemplazarPorID(arbol []entity.ItemPresupuesto, id string, fn func(entity.ItemPresupuesto) entity.ItemPresupuesto) []entity.ItemPresupuesto {
	nuevo, _ := reemplazarEn(arbol, id, fn)
	return nuevo
}

func reemplazarEn(nodos []entity.ItemPresupuesto, id string, fn func(entity.ItemPresupuesto) entity.ItemPresupuesto) ([]entity.ItemPresupuesto, bool) {
	for i, n := range nodos {
		if n.ID == id {
			out := clonarNivel(nodos)
			r := fn(n)
			if r.Hijos == nil {
				r.Hijos = n.Hijos
			}
			out[i] = r
			return out, true
		}
		if hijos, ok := reemplazarEn(n.Hijos, id, fn); ok {
			out := clonarNivel(nodos)
			out[i].Hijos = hijos
			return out, true
		}
	}
	return nodos, false
}

// EliminarPorID quita el nodo con el ID dado junto con todo su subarbol.
// Un ID inexistente es un no-op: vuelve el bosque sin cambios.
func EliminarPorID(arbol []entity.ItemPresupuesto, id string) []entity.ItemPresupuesto {
	nuevo, _ := eliminarEn(arbol, id)
	return nuevo
}

func eliminarEn(nodos []entity.ItemPresupuesto, id string) ([]entity.ItemPresupuesto, bool) {
	for i, n := range nodos {
		if n.ID == id {
			out := make([]entity.ItemPresupuesto, 0, len(nodos)-1)
			out = append(out, nodos[:i]...)
			out = append(out, nodos[i+1:]...)
			return out, true
		}
		if hijos, ok := eliminarEn(n.Hijos, id); ok {
			out := clonarNivel(nodos)
			out[i].Hijos = hijos
			return out, true
		}
	}
	return nodos, false
}

// Rollup suma el parcial de todas las partidas hoja alcanzables. Los
// parciales pre-calculados de capitulos y subcapitulos se ignoran: la unica
// forma de garantizar un total correcto es recomputarlo desde las hojas.
func Rollup(arbol []entity.ItemPresupuesto) float64 {
	var total float64
	for _, n := range arbol {
		if n.EsHoja() {
			total += n.Parcial
		} else {
			total += Rollup(n.Hijos)
		}
	}
	return total
}

// RecalcularAncestros devuelve un bosque donde cada capitulo y subcapitulo
// lleva como parcial la suma de sus partidas descendientes. El arbol no
// mantiene este invariante tras cada mutacion; el llamador decide cuando
// recomputar.
func RecalcularAncestros(arbol []entity.ItemPresupuesto) []entity.ItemPresupuesto {
	out := clonarNivel(arbol)
	for i := range out {
		if out[i].EsHoja() {
			continue
		}
		out[i].Hijos = RecalcularAncestros(out[i].Hijos)
		out[i].Parcial = Rollup(out[i].Hijos)
	}
	return out
}

// Aplanar devuelve las partidas hoja del bosque en orden de recorrido.
func Aplanar(arbol []entity.ItemPresupuesto) []entity.ItemPresupuesto {
	var hojas []entity.ItemPresupuesto
	for _, n := range arbol {
		if n.EsHoja() {
			hojas = append(hojas, n)
			continue
		}
		hojas = append(hojas, Aplanar(n.Hijos)...)
	}
	return hojas
}

// Reconciliar resuelve la divergencia entre una copia local y la
// instantanea remota: la estructura remota manda, pero los subtotales de
// ancestros se recomputan desde las hojas en vez de confiar en los
// agregados que envia el servidor.
func Reconciliar(local, remoto []entity.ItemPresupuesto) []entity.ItemPresupuesto {
	return RecalcularAncestros(remoto)
}

// ConstruirArbol arma el bosque a partir de las filas planas de la tabla de
// partidas. Las filas deben venir ordenadas por orden de insercion entre
// hermanos; ese orden es el orden de presentacion.
func ConstruirArbol(items []entity.ItemPresupuesto) []entity.ItemPresupuesto {
	porPadre := make(map[string][]entity.ItemPresupuesto, len(items))
	for _, it := range items {
		it.Hijos = nil
		porPadre[it.PadreID] = append(porPadre[it.PadreID], it)
	}

	var armar func(padreID string) []entity.ItemPresupuesto
	armar = func(padreID string) []entity.ItemPresupuesto {
		filas := porPadre[padreID]
		out := make([]entity.ItemPresupuesto, 0, len(filas))
		for _, f := range filas {
			f.Hijos = armar(f.ID)
			out = append(out, f)
		}
		return out
	}
	return armar("")
}

func clonarNivel(nodos []entity.ItemPresupuesto) []entity.ItemPresupuesto {
	out := make([]entity.ItemPresupuesto, len(nodos))
	copy(out, nodos)
	return out
}
