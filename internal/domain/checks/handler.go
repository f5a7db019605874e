package checks

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"preop-drug-check/internal/middleware"
	"preop-drug-check/internal/platform/validation"

	"github.com/go-chi/chi/v5"
)

const runCheckSchema = `{
	"type": "object",
	"properties": {
		"drugs": {"type": "array", "items": {"type": "string"}},
		"drug_list": {"type": "string"},
		"surgery_date": {"type": "string"}
	},
	"additionalProperties": false
}`

var runCheckValidator = validation.MustValidator(runCheckSchema)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/checks", func(cr chi.Router) {
		cr.Post("/", runCheckHandler(svc))
		cr.Get("/", listChecksHandler(svc))
		cr.Get("/{checkID}", getCheckHandler(svc))
	})
}

// runCheckRequest es el cuerpo para ejecutar un check.
// drugs tiene prioridad; si viene vacío se usa drug_list (una línea por medicamento).
type runCheckRequest struct {
	Drugs       []string `json:"drugs"`
	DrugList    string   `json:"drug_list"`
	SurgeryDate string   `json:"surgery_date"` // YYYY-MM-DD
}

type resultResponse struct {
	Drug      string `json:"drug"`
	Text      string `json:"text"`
	HasOutput bool   `json:"has_output"`
	Cached    bool   `json:"cached"`
	Line      string `json:"line"`
}

// checkResponse representa un check devuelto por la API.
type checkResponse struct {
	ID          string           `json:"id"`
	Drugs       []string         `json:"drugs"`
	SurgeryDate string           `json:"surgery_date"`
	User        string           `json:"user"`
	Status      Status           `json:"status"`
	Results     []resultResponse `json:"results"`
	Error       string           `json:"error,omitempty"`
	Lines       []string         `json:"lines"`
	CreatedAt   time.Time        `json:"created_at"`
	DurationMS  int64            `json:"duration_ms"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// runCheckHandler godoc
// @Summary Ejecutar check de medicamentos
// @Description Consulta el workflow una vez por medicamento en paralelo. Si una consulta falla, el check completo falla y no hay resultados parciales.
// @Tags checks
// @Accept json
// @Produce json
// @Param X-Workflow-User header string false "Usuario enviado al workflow (default webapp-user)"
// @Param payload body runCheckRequest true "Medicamentos y fecha de cirugía (YYYY-MM-DD)"
// @Success 201 {object} checkResponse
// @Failure 400 {object} errorResponse "faltan datos / fecha inválida"
// @Failure 502 {object} checkResponse "falla del workflow para algún medicamento"
// @Failure 503 {object} errorResponse "no se pudo obtener la API key"
// @Router /api/checks [post]
func runCheckHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, err, "invalid body")
			return
		}
		if err := runCheckValidator.ValidateBytes(raw); err != nil {
			writeError(w, http.StatusBadRequest, err, "invalid request")
			return
		}

		var req runCheckRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			writeError(w, http.StatusBadRequest, err, "invalid json")
			return
		}

		user, _ := middleware.GetWorkflowUser(r.Context())

		c, err := svc.Run(r.Context(), Input{
			Drugs:       req.Drugs,
			RawDrugs:    req.DrugList,
			SurgeryDate: req.SurgeryDate,
			User:        user,
		})
		if err != nil {
			var drugErr *DrugError
			switch {
			case errors.As(err, &drugErr):
				writeJSON(w, http.StatusBadGateway, toCheckResponse(c))
			case errors.Is(err, ErrKeyUnavailable):
				writeError(w, http.StatusServiceUnavailable, err, AlertMessage(err))
			case AlertMessage(err) != "":
				writeError(w, http.StatusBadRequest, err, AlertMessage(err))
			default:
				writeError(w, http.StatusInternalServerError, err, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, toCheckResponse(c))
	}
}

// listChecksHandler godoc
// @Summary Listar checks recientes
// @Tags checks
// @Produce json
// @Param limit query int false "Máximo de checks (1-100). Por defecto 20"
// @Success 200 {array} checkResponse
// @Failure 500 {object} errorResponse
// @Router /api/checks [get]
func listChecksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		items, err := svc.ListRecent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err, "internal error")
			return
		}

		out := make([]checkResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCheckResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getCheckHandler godoc
// @Summary Obtener un check
// @Tags checks
// @Produce json
// @Param checkID path string true "ID del check"
// @Success 200 {object} checkResponse
// @Failure 404 {object} errorResponse
// @Router /api/checks/{checkID} [get]
func getCheckHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), chi.URLParam(r, "checkID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, err, "check not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, toCheckResponse(c))
	}
}

func toCheckResponse(c Check) checkResponse {
	results := make([]resultResponse, 0, len(c.Results))
	for _, res := range c.Results {
		results = append(results, resultResponse{
			Drug:      res.Drug,
			Text:      res.Text,
			HasOutput: res.HasOutput,
			Cached:    res.Cached,
			Line:      res.Line(),
		})
	}
	drugs := c.Drugs
	if drugs == nil {
		drugs = []string{}
	}
	return checkResponse{
		ID:          c.ID,
		Drugs:       drugs,
		SurgeryDate: c.SurgeryDate,
		User:        c.User,
		Status:      c.Status,
		Results:     results,
		Error:       c.Error,
		Lines:       c.Lines(),
		CreatedAt:   c.CreatedAt,
		DurationMS:  c.Duration.Milliseconds(),
	}
}

func writeError(w http.ResponseWriter, status int, err error, msg string) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Message: msg})
}

// writeJSON está duplicado en los paquetes que exponen HTTP
// (mismo criterio que el resto de handlers: sin helper compartido todavía).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
