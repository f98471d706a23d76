// Package station enumerates the fixed set of baias the network operates.
package station

// Names is the canonical list of stations. Bicycles and catracas reference
// stations by these exact strings, so the list is part of the wire contract.
var Names = []string{
	"Estação Centro Histórico",
	"Estação Orla do Guaíba",
	"Estação Bairro Menino-Deus",
	"Estação do Gasômetro",
}

// Valid reports whether name is one of the operating stations.
func Valid(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
