package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DioGolang/lifthub/internal/application/usecase/student"
	"github.com/DioGolang/lifthub/internal/domain/entity"
	"github.com/DioGolang/lifthub/pkg/logger"
	"github.com/DioGolang/lifthub/pkg/metrics"
	"github.com/DioGolang/lifthub/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type Student struct {
	UseCases  student.UseCases
	Validator *validator.Validator
	Logger    logger.Logger
	Metrics   metrics.Metrics
}

func NewStudentHandler(uc student.UseCases, log logger.Logger, m metrics.Metrics) *Student {
	return &Student{
		UseCases:  uc,
		Validator: validator.New(),
		Logger:    log,
		Metrics:   m,
	}
}

func (h *Student) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{cpf}", h.Get)
	r.Put("/{cpf}", h.Update)
	r.Delete("/{cpf}", h.Delete)
}

func (h *Student) Create(w http.ResponseWriter, r *http.Request) {
	var dto student.RegisterInput
	if !h.decode(w, r, &dto) {
		return
	}

	output, err := h.UseCases.Register.Execute(r.Context(), dto)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "student registered", Data: output})
}

func (h *Student) List(w http.ResponseWriter, r *http.Request) {
	output, err := h.UseCases.List.Execute(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: output})
}

func (h *Student) Get(w http.ResponseWriter, r *http.Request) {
	output, err := h.UseCases.Find.Execute(r.Context(), student.FindInput{CPF: chi.URLParam(r, "cpf")})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: output})
}

func (h *Student) Update(w http.ResponseWriter, r *http.Request) {
	var dto student.UpdateInput
	if !h.decode(w, r, &dto) {
		return
	}
	dto.CurrentCPF = chi.URLParam(r, "cpf")

	output, err := h.UseCases.Update.Execute(r.Context(), dto)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "student updated", Data: output})
}

func (h *Student) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.UseCases.Remove.Execute(r.Context(), student.RemoveInput{CPF: chi.URLParam(r, "cpf")})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "student removed"})
}

func (h *Student) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, r, http.StatusRequestEntityTooLarge, string(entity.KindValidation), "request body too large")
			return false
		}
		h.reject(w, r, http.StatusBadRequest, string(entity.KindValidation), "malformed request body")
		return false
	}
	if err := h.Validator.Struct(dst); err != nil {
		h.reject(w, r, http.StatusBadRequest, string(entity.KindValidation), err.Error())
		return false
	}
	return true
}

func (h *Student) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := entity.KindOf(err)
	if kind == entity.KindInternal {
		h.Logger.Error(r.Context(), "student request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.WithError(err),
		)
	}
	h.Metrics.RecordRequestRejected(string(kind))
	writeJSON(w, StatusFor(err), envelope{Success: false, Message: PublicMessage(err)})
}

func (h *Student) reject(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	h.Logger.Debug(r.Context(), "rejected student request", logger.String("reason", message))
	h.Metrics.RecordRequestRejected(kind)
	writeJSON(w, status, envelope{Success: false, Message: message})
}
