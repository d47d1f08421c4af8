// Package ui serves the server-rendered student registry page.
package ui

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/DioGolang/lifthub/internal/application/usecase/student"
	"github.com/DioGolang/lifthub/internal/infra/web/handler"
	"github.com/DioGolang/lifthub/pkg/cpf"
	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplate = template.Must(
	template.New("index.html").
		Funcs(template.FuncMap{"formatCPF": cpf.Format}).
		ParseFS(templatesFS, "templates/index.html"),
)

type page struct {
	Students []student.StudentOutput
	OK       string
	Err      string
}

type Handler struct {
	UseCases student.UseCases
	Logger   logger.Logger
}

func NewHandler(uc student.UseCases, log logger.Logger) *Handler {
	return &Handler{UseCases: uc, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/ui/students", h.Register)
	r.Post("/ui/students/{cpf}/update", h.Update)
	r.Post("/ui/students/{cpf}/delete", h.Remove)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data := page{
		OK:  r.URL.Query().Get("ok"),
		Err: r.URL.Query().Get("err"),
	}

	students, err := h.UseCases.List.Execute(r.Context())
	if err != nil {
		h.Logger.Error(r.Context(), "ui: list students", logger.WithError(err))
		data.Err = handler.PublicMessage(err)
	}
	data.Students = students

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.Logger.Error(r.Context(), "ui: render page", logger.WithError(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	_, err := h.UseCases.Register.Execute(r.Context(), student.RegisterInput{CPF: r.PostFormValue("cpf")})
	h.redirect(w, r, "student registered", err)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	_, err := h.UseCases.Update.Execute(r.Context(), student.UpdateInput{
		CurrentCPF: chi.URLParam(r, "cpf"),
		NewCPF:     r.PostFormValue("new_cpf"),
	})
	h.redirect(w, r, "student updated", err)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.UseCases.Remove.Execute(r.Context(), student.RemoveInput{CPF: chi.URLParam(r, "cpf")})
	h.redirect(w, r, "student removed", err)
}

// redirect follows the post/redirect/get pattern with the outcome as a flash.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, success string, err error) {
	q := url.Values{}
	if err != nil {
		if handler.StatusFor(err) == http.StatusInternalServerError {
			h.Logger.Error(r.Context(), "ui: student action failed", logger.WithError(err))
		}
		q.Set("err", handler.PublicMessage(err))
	} else {
		q.Set("ok", success)
	}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}
