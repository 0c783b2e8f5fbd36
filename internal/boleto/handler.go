package boleto

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

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

// DTO usado no POST /boletos
type emitirBoletoDTO struct {
	ClienteID      uint      `json:"clienteId" validate:"required"`
	FaturaID       *uint     `json:"faturaId"`
	ParcelaID      *uint     `json:"parcelaId"`
	Valor          float64   `json:"valor" validate:"required,gt=0"`
	DataVencimento time.Time `json:"dataVencimento" validate:"required"`
	Multa          float64   `json:"multa" validate:"gte=0"`
	Juros          float64   `json:"juros" validate:"gte=0"`
}

// POST /boletos
func (h *Handler) Emitir(w http.ResponseWriter, r *http.Request) {
	var dto emitirBoletoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		http.Error(w, "dados inválidos: "+err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.Service.Emitir(r.Context(), Emissao{
		ClienteID:      dto.ClienteID,
		FaturaID:       dto.FaturaID,
		ParcelaID:      dto.ParcelaID,
		Valor:          dto.Valor,
		DataVencimento: dto.DataVencimento,
		Multa:          dto.Multa,
		Juros:          dto.Juros,
	})
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(b)
}

// GET /clientes/{id}/boletos
func (h *Handler) ListarPorCliente(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	boletos, err := h.Service.Repo.ListarPorCliente(uint(id))
	if err != nil {
		http.Error(w, "erro ao listar boletos", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(boletos)
}

// POST /boletos/{id}/conciliacao
func (h *Handler) Conciliar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	b, err := h.Service.Conciliar(r.Context(), uint(id))
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b)
}

// POST /boletos/conciliacao
func (h *Handler) ConciliarTodos(w http.ResponseWriter, r *http.Request) {
	conciliados, falhas := h.Service.ConciliarTodos(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"conciliados": conciliados,
		"falhas":      falhas,
	})
}

// DELETE /boletos/{id}
func (h *Handler) Cancelar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	b, err := h.Service.Cancelar(r.Context(), uint(id))
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b)
}
