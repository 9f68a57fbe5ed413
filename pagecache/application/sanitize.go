package application

import "strings"

// Markers delimitam o documento dentro da saída do gerador.
type Markers struct {
	Start string
	End   string
}

var DefaultMarkers = Markers{Start: "<!DOCTYPE html>", End: "</html>"}

// Sanitize recorta s entre a primeira ocorrência de m.Start e a última de
// m.End (inclusive). Sem Start, começa em 0; sem End, vai até o fim.
func Sanitize(s string, m Markers) string {
	start := 0
	if m.Start != "" {
		if i := strings.Index(s, m.Start); i >= 0 {
			start = i
		}
	}

	end := len(s)
	if m.End != "" {
		if i := strings.LastIndex(s, m.End); i >= 0 {
			end = i + len(m.End)
		}
	}

	// End só aparece antes de Start: não há fechamento depois do início.
	if end < start {
		end = len(s)
	}
	return s[start:end]
}
