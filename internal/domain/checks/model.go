package checks

import "time"

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Input es lo que llega del formulario, la API JSON o el CLI.
// Si Drugs viene vacío se parsea RawDrugs (una línea por medicamento).
type Input struct {
	RawDrugs    string
	Drugs       []string
	SurgeryDate string
	User        string
}

// Result es la respuesta del workflow para un medicamento.
type Result struct {
	Drug      string
	Text      string
	HasOutput bool
	Cached    bool
}

// Line es lo que se muestra en la lista de resultados.
func (r Result) Line() string {
	if !r.HasOutput {
		return r.Drug + ": " + NoOutputText
	}
	return r.Drug + ": " + r.Text
}

// Check es una ejecución completa (todos los medicamentos de un envío).
type Check struct {
	ID          string
	Drugs       []string
	SurgeryDate string
	User        string

	Status  Status
	Results []Result // mismo orden que Drugs; vacío si Status=failed
	Error   string

	CreatedAt time.Time
	Duration  time.Duration
}

// Lines devuelve una línea por medicamento, o la única línea de error.
func (c Check) Lines() []string {
	if c.Status == StatusFailed {
		return []string{FailureLine(c.Error)}
	}
	out := make([]string, 0, len(c.Results))
	for _, r := range c.Results {
		out = append(out, r.Line())
	}
	return out
}
