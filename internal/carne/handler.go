// internal/carne/handler.go
package carne

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type Handler struct {
	Service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service, validate: validator.New()}
}

// POST /carnes
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var dto CriarCarneDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		http.Error(w, "dados inválidos: "+err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.Service.Criar(r.Context(), dto)
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(c)
}

// GET /carnes/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Service.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "carnê não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// GET /clientes/{id}/carnes
func (h *Handler) ListarPorCliente(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	carnes, err := h.Service.Repo.ListarPorCliente(uint(id))
	if err != nil {
		http.Error(w, "erro ao listar carnês", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(carnes)
}

// GET /carnes/{id}/parcelas
func (h *Handler) ListarParcelas(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	parcelas, err := h.Service.Repo.ListarParcelas(uint(id))
	if err != nil {
		http.Error(w, "erro ao listar parcelas", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(parcelas)
}

// POST /parcelas/{pid}/pagamento
func (h *Handler) RegistrarPagamento(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(mux.Vars(r)["pid"])
	if err != nil {
		http.Error(w, "ID da parcela inválido", http.StatusBadRequest)
		return
	}

	var payload struct {
		ValorPago float64 `json:"valorPago"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	p, err := h.Service.RegistrarPagamento(uint(pid), payload.ValorPago)
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// POST /carnes/{id}/cancelamento
func (h *Handler) Cancelar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Service.Cancelar(r.Context(), uint(id))
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// DELETE /carnes/{id}
func (h *Handler) Excluir(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if err := h.Service.Excluir(r.Context(), uint(id)); err != nil {
		apperr.Responder(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
