// Package web sirve el formulario HTML (server-side, sin JavaScript).
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"preop-drug-check/internal/domain/checks"
	"preop-drug-check/internal/middleware"
	"preop-drug-check/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

const (
	fieldDrugList    = "drug-list"
	fieldSurgeryDate = "surgery-date"
)

// page es el view model de index.html.
type page struct {
	DrugList    string
	SurgeryDate string
	MinDate     string

	Alert     string
	Lines     []string
	ErrorLine string
}

func RegisterRoutes(r chi.Router, svc *checks.Service, log logger.Logger) {
	r.Get("/", showFormHandler(svc))
	r.Post("/", submitFormHandler(svc, log))
}

// showFormHandler: fecha por defecto y mínima = hoy.
func showFormHandler(svc *checks.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := checks.Today(svc.Now())
		render(w, http.StatusOK, page{SurgeryDate: today, MinDate: today})
	}
}

func submitFormHandler(svc *checks.Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := checks.Today(svc.Now())

		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		p := page{
			DrugList:    r.PostForm.Get(fieldDrugList),
			SurgeryDate: strings.TrimSpace(r.PostForm.Get(fieldSurgeryDate)),
			MinDate:     today,
		}

		user, _ := middleware.GetWorkflowUser(r.Context())
		c, err := svc.Run(r.Context(), checks.Input{
			RawDrugs:    p.DrugList,
			SurgeryDate: p.SurgeryDate,
			User:        user,
		})
		if err != nil {
			var drugErr *checks.DrugError
			switch {
			case errors.As(err, &drugErr):
				p.ErrorLine = checks.FailureLine(err.Error())
			case checks.AlertMessage(err) != "":
				p.Alert = checks.AlertMessage(err)
			default:
				log.Error("a critical error occurred", map[string]any{"error": err})
				p.ErrorLine = checks.FailureLine(err.Error())
			}
			if p.SurgeryDate == "" {
				p.SurgeryDate = today
			}
			render(w, http.StatusOK, p)
			return
		}

		p.Lines = c.Lines()
		render(w, http.StatusOK, p)
	}
}

func render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = indexTmpl.Execute(w, p)
}
