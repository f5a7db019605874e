package checks

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// MaxDrugs limita los requests salientes de un check.
const MaxDrugs = 50

// ParseDrugList separa el texto del formulario en medicamentos:
// una línea por medicamento, sin líneas en blanco, conservando el orden.
func ParseDrugList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return NormalizeDrugs(strings.Split(raw, "\n"))
}

// NormalizeDrugs recorta cada nombre (incluye \r de CRLF) y descarta vacíos.
func NormalizeDrugs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Today devuelve la fecha de t en formato YYYY-MM-DD.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// Validate exige entre 1 y MaxDrugs medicamentos y una fecha válida no anterior a hoy.
func Validate(drugs []string, surgeryDate string, now time.Time) error {
	if len(drugs) == 0 || strings.TrimSpace(surgeryDate) == "" {
		return ErrMissingInput
	}
	if len(drugs) > MaxDrugs {
		return ErrTooManyDrugs
	}
	d, err := time.Parse(DateLayout, surgeryDate)
	if err != nil || d.Format(DateLayout) != surgeryDate {
		return ErrInvalidDate
	}
	// YYYY-MM-DD compara bien como string
	if surgeryDate < Today(now) {
		return ErrDateInPast
	}
	return nil
}
