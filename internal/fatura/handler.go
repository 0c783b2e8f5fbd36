package fatura

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
	"github.com/NexumEnergia/api-cobranca/internal/cliente"

	"github.com/gorilla/mux"
)

type Handler struct {
	Gerador *Gerador
}

func NewHandler(gerador *Gerador) *Handler {
	return &Handler{Gerador: gerador}
}

// POST /contratos/{id}/faturas
func (h *Handler) GerarParaContrato(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID do contrato inválido", http.StatusBadRequest)
		return
	}

	c, err := h.Gerador.Contratos.BuscarPorID(uint(id))
	if err != nil {
		http.Error(w, "contrato não encontrado", http.StatusNotFound)
		return
	}

	criadas, err := h.Gerador.GerarParaContrato(c)
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(criadas)
}

// POST /faturas/geracao?mes=2&ano=2026&clienteId=5
func (h *Handler) GerarParaPeriodo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mes, err := strconv.Atoi(q.Get("mes"))
	if err != nil || mes < 1 || mes > 12 {
		http.Error(w, "mês inválido", http.StatusBadRequest)
		return
	}
	ano, err := strconv.Atoi(q.Get("ano"))
	if err != nil || ano < 2000 {
		http.Error(w, "ano inválido", http.StatusBadRequest)
		return
	}

	var clienteID *uint
	if raw := q.Get("clienteId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			http.Error(w, "clienteId inválido", http.StatusBadRequest)
			return
		}
		v := uint(id)
		clienteID = &v
	}

	criadas, falhas := h.Gerador.GerarParaPeriodo(time.Month(mes), ano, clienteID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"criadas": criadas,
		"falhas":  falhas,
	})
}

// GET /clientes/{id}/faturas
func (h *Handler) ListarPorCliente(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	faturas, err := h.Gerador.Repo.ListarPorCliente(uint(id))
	if err != nil {
		http.Error(w, "erro ao listar faturas", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(faturas)
}

// GET /faturas/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	f, err := h.Gerador.Repo.FindByID(uint(id))
	if err != nil {
		http.Error(w, "fatura não encontrada", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(f)
}

// POST /faturas/{id}/pagamento
func (h *Handler) RegistrarPagamento(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	var payload struct {
		ValorPago float64 `json:"valorPago"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "JSON mal formado", http.StatusBadRequest)
		return
	}

	f, err := h.Gerador.RegistrarPagamento(uint(id), payload.ValorPago)
	if err != nil {
		apperr.Responder(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(f)
}

// GET /faturas?status=pendente
func (h *Handler) ListarPorStatus(w http.ResponseWriter, r *http.Request) {
	status := StatusFatura(r.URL.Query().Get("status"))
	switch status {
	case StatusPendente, StatusPaga, StatusAtrasada:
	default:
		http.Error(w, "status inválido", http.StatusBadRequest)
		return
	}
	faturas, err := h.Gerador.Repo.ListarPorStatus(status)
	if err != nil {
		http.Error(w, "erro ao listar faturas", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(faturas)
}

// GET /clientes/{id}/resumo
func (h *Handler) ResumoCliente(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	cli, err := h.Gerador.Clientes.BuscarPorID(h.Gerador.Repo.DB, uint(id))
	if err != nil {
		http.Error(w, "cliente não encontrado", http.StatusNotFound)
		return
	}
	faturas, err := h.Gerador.Repo.ListarPorCliente(cli.ID)
	if err != nil {
		http.Error(w, "erro ao listar faturas", http.StatusInternalServerError)
		return
	}

	resumo := cliente.ResumoClienteDTO{
		ID:            cli.ID,
		Nome:          cli.Nome,
		CNPJ:          cli.CNPJ,
		Email:         cli.Email,
		Telefone:      cli.Telefone,
		PossuiPlano:   cli.PossuiPlano,
		ValorMensal:   cli.ValorMensal,
		DiaVencimento: cli.DiaVencimento,
	}
	for _, f := range faturas {
		if f.Status == StatusPaga {
			continue
		}
		resumo.FaturasAbertas++
		resumo.TotalEmAberto += f.ValorTotal - f.ValorPago
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resumo)
}

// POST /faturas/atraso
func (h *Handler) MarcarAtrasadas(w http.ResponseWriter, r *http.Request) {
	n, err := h.Gerador.Repo.MarcarAtrasadas(time.Now())
	if err != nil {
		http.Error(w, "erro ao marcar faturas atrasadas", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"atualizadas": n})
}
