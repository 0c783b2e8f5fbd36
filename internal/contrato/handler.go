package contrato

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
	"github.com/NexumEnergia/api-cobranca/internal/auth"

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

func idDaRota(r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// POST /contratos
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var dto CriarContratoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		http.Error(w, "dados inválidos: "+err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.Service.Criar(dto, auth.UsuarioDaRequisicao(r))
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(c)
}

// GET /contratos
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.Repo.ListarAtivos()
	if err != nil {
		http.Error(w, "erro ao listar contratos", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// GET /contratos/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, ok := idDaRota(r)
	if !ok {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	c, err := h.Service.Repo.BuscarPorID(id)
	if err != nil {
		http.Error(w, "contrato não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// GET /clientes/{id}/contratos
func (h *Handler) ListarPorCliente(w http.ResponseWriter, r *http.Request) {
	id, ok := idDaRota(r)
	if !ok {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	list, err := h.Service.Repo.ListarPorCliente(id)
	if err != nil {
		http.Error(w, "erro ao listar contratos", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// POST /contratos/{id}/assinatura
func (h *Handler) Assinar(w http.ResponseWriter, r *http.Request) {
	id, ok := idDaRota(r)
	if !ok {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	var dto AssinarContratoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		http.Error(w, "dados inválidos: "+err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.Service.Assinar(id, dto.Assinatura, dto.HashDocumento, dto.SignatarioID)
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// POST /contratos/{id}/liberacao
func (h *Handler) Liberar(w http.ResponseWriter, r *http.Request) {
	id, ok := idDaRota(r)
	if !ok {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	var dto MotivoDTO
	_ = json.NewDecoder(r.Body).Decode(&dto)

	c, err := h.Service.Liberar(id, auth.UsuarioDaRequisicao(r), dto.Motivo)
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// DELETE /contratos/{id}
func (h *Handler) Excluir(w http.ResponseWriter, r *http.Request) {
	id, ok := idDaRota(r)
	if !ok {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	var dto MotivoDTO
	_ = json.NewDecoder(r.Body).Decode(&dto)

	if err := h.Service.Excluir(id, auth.UsuarioDaRequisicao(r), dto.Motivo); err != nil {
		apperr.Responder(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /contratos/{id}/renovacao
func (h *Handler) Renovar(w http.ResponseWriter, r *http.Request) {
	id, ok := idDaRota(r)
	if !ok {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	sucessor, err := h.Service.Renovar(id, auth.UsuarioDaRequisicao(r))
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(sucessor)
}

// PATCH /contratos/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	id, ok := idDaRota(r)
	if !ok {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	var payload struct {
		AtualizacaoContrato
		Motivo string `json:"motivo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	c, err := h.Service.Atualizar(id, payload.AtualizacaoContrato, auth.UsuarioDaRequisicao(r), payload.Motivo)
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

// GET /contratos/{id}/historico
func (h *Handler) Historico(w http.ResponseWriter, r *http.Request) {
	id, ok := idDaRota(r)
	if !ok {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	entradas, err := h.Service.Historico(id)
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entradas)
}
