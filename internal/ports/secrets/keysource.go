package secrets

import "context"

// KeySource entrega la API key del workflow en tiempo de ejecución.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}
