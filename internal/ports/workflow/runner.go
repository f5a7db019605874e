package workflow

import (
	"context"
	"fmt"
)

// Request es una llamada al workflow: un medicamento + fecha de cirugía.
type Request struct {
	Drug        string
	SurgeryDate string // YYYY-MM-DD ("opeday" en el workflow)
	User        string
}

// Output es el resultado de una llamada exitosa.
// HasText=false cuando la respuesta no trae data.outputs.text.
type Output struct {
	RunID   string
	Text    string
	HasText bool
}

// Runner ejecuta el workflow para un medicamento con la API key dada.
type Runner interface {
	Run(ctx context.Context, apiKey string, req Request) (Output, error)
}

// StatusError representa una respuesta no-2xx del workflow para un medicamento.
// Message es el mensaje de la API, "Unknown API error" o el texto de estado HTTP.
type StatusError struct {
	Drug       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("「%s」の確認中にエラーが発生しました (Status: %d): %s", e.Drug, e.StatusCode, e.Message)
}
