package checks

import (
	"context"

	"preop-drug-check/internal/ports/workflow"
)

type Repository interface {
	Create(ctx context.Context, c Check) error
	GetByID(ctx context.Context, id string) (Check, error)
	ListRecent(ctx context.Context, limit int) ([]Check, error)
}

// ResultCache guarda salidas exitosas por request (medicamento, fecha, usuario). Opcional.
type ResultCache interface {
	Get(ctx context.Context, req workflow.Request) (workflow.Output, bool, error)
	Set(ctx context.Context, req workflow.Request, out workflow.Output) error
}
