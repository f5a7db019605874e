package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"preop-drug-check/internal/platform/logger"
	"preop-drug-check/internal/platform/metrics"
	"preop-drug-check/internal/ports/secrets"
	"preop-drug-check/internal/ports/workflow"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Deps struct {
	Keys   secrets.KeySource
	Runner workflow.Runner
	Repo   Repository
	Cache  ResultCache // opcional
	Logger logger.Logger

	// DefaultUser se usa si Input.User viene vacío.
	DefaultUser string

	// Opcional; default time.Now.
	Now func() time.Time
}

type Service struct {
	keys        secrets.KeySource
	runner      workflow.Runner
	repo        Repository
	cache       ResultCache
	log         logger.Logger
	defaultUser string
	now         func() time.Time
}

func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = logger.NewNop()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		keys:        d.Keys,
		runner:      d.Runner,
		repo:        d.Repo,
		cache:       d.Cache,
		log:         log,
		defaultUser: strings.TrimSpace(d.DefaultUser),
		now:         now,
	}
}

// Now expone el reloj del servicio (el formulario lo usa para la fecha mínima).
func (s *Service) Now() time.Time { return s.now() }

// Run valida, obtiene la API key y consulta el workflow una vez por medicamento
// en paralelo. La primera falla cancela el resto y el check completo falla:
// no se devuelven resultados parciales.
//
// Errores de validación y de key se devuelven sin Check y sin llamar al workflow.
// Si el workflow falla se devuelve el Check (Status=failed) junto con un *DrugError.
func (s *Service) Run(ctx context.Context, in Input) (Check, error) {
	drugs := NormalizeDrugs(in.Drugs)
	if len(drugs) == 0 {
		drugs = ParseDrugList(in.RawDrugs)
	}
	date := strings.TrimSpace(in.SurgeryDate)

	now := s.now()
	if err := Validate(drugs, date, now); err != nil {
		s.log.Warn("validation failed", map[string]any{
			"drugs": len(drugs),
			"date":  date,
			"error": err,
		})
		return Check{}, err
	}

	key, err := s.keys.APIKey(ctx)
	if err != nil {
		s.log.Error("error fetching api key", map[string]any{"error": err})
		return Check{}, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	user := strings.TrimSpace(in.User)
	if user == "" {
		user = s.defaultUser
	}

	c := Check{
		ID:          uuid.NewString(),
		Drugs:       drugs,
		SurgeryDate: date,
		User:        user,
		CreatedAt:   now,
	}
	log := s.log.With(map[string]any{"check_id": c.ID})
	log.Info("check started", map[string]any{"drugs": drugs, "date": date})
	metrics.CheckDrugs.Observe(float64(len(drugs)))

	results, runErr := s.fanOut(ctx, log, key, user, drugs, date)
	c.Duration = s.now().Sub(now)

	if runErr != nil {
		c.Status = StatusFailed
		c.Error = runErr.Error()
		log.Error("check failed", map[string]any{"error": runErr})
	} else {
		c.Status = StatusSucceeded
		c.Results = results
		log.Info("check finished", map[string]any{"duration_ms": c.Duration.Milliseconds()})
	}
	metrics.ChecksTotal.WithLabelValues(string(c.Status)).Inc()

	if err := s.repo.Create(ctx, c); err != nil {
		// El historial no debe tapar el resultado del workflow.
		log.Warn("could not record check", map[string]any{"error": err})
	}

	if runErr != nil {
		return c, runErr
	}
	return c, nil
}

func (s *Service) fanOut(ctx context.Context, log logger.Logger, key, user string, drugs []string, date string) ([]Result, error) {
	results := make([]Result, len(drugs))

	g, gctx := errgroup.WithContext(ctx)
	for i, drug := range drugs {
		g.Go(func() error {
			r, err := s.runOne(gctx, log, key, user, drug, date)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) runOne(ctx context.Context, log logger.Logger, key, user, drug, date string) (Result, error) {
	req := workflow.Request{Drug: drug, SurgeryDate: date, User: user}
	if s.cache != nil {
		out, ok, err := s.cache.Get(ctx, req)
		if err != nil {
			log.Warn("result cache get failed", map[string]any{"drug": drug, "error": err})
		} else if ok {
			metrics.WorkflowCalls.WithLabelValues(metrics.OutcomeCacheHit).Inc()
			log.Debug("result cache hit", map[string]any{"drug": drug})
			return Result{Drug: drug, Text: out.Text, HasOutput: out.HasText, Cached: true}, nil
		}
	}

	start := time.Now()
	log.Debug("sending workflow request", map[string]any{"drug": drug, "opeday": date, "user": user})
	out, err := s.runner.Run(ctx, key, req)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.WorkflowCalls.WithLabelValues(metrics.OutcomeError).Inc()
		metrics.WorkflowCallDuration.WithLabelValues(metrics.OutcomeError).Observe(elapsed)
		if !errors.Is(err, context.Canceled) {
			log.Error("workflow error", map[string]any{"drug": drug, "error": err})
		}
		return Result{}, &DrugError{Drug: drug, Err: err}
	}
	metrics.WorkflowCalls.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.WorkflowCallDuration.WithLabelValues(metrics.OutcomeSuccess).Observe(elapsed)

	if !out.HasText {
		log.Warn("no valid output", map[string]any{"drug": drug, "run_id": out.RunID})
	} else {
		log.Debug("received workflow output", map[string]any{"drug": drug, "run_id": out.RunID})
		if s.cache != nil {
			if err := s.cache.Set(ctx, req, out); err != nil {
				log.Warn("result cache set failed", map[string]any{"drug": drug, "error": err})
			}
		}
	}

	return Result{Drug: drug, Text: out.Text, HasOutput: out.HasText}, nil
}

func (s *Service) Get(ctx context.Context, id string) (Check, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Check{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ListRecent devuelve los últimos checks (más reciente primero).
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Check, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.ListRecent(ctx, limit)
}
