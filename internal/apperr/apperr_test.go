package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatusHTTP(t *testing.T) {
	casos := []struct {
		nome   string
		err    error
		status int
	}{
		{"não encontrado", NaoEncontrado("contrato não encontrado"), http.StatusNotFound},
		{"validação", Validacao("valor deve ser positivo"), http.StatusBadRequest},
		{"estado inválido", EstadoInvalido("contrato já liberado"), http.StatusConflict},
		{"integridade", Integridade("hash divergente"), http.StatusConflict},
		{"gateway", Gateway(errors.New("timeout"), "falha na chamada"), http.StatusBadGateway},
		{"erro cru", errors.New("qualquer coisa"), http.StatusInternalServerError},
		{"embrulhado", fmt.Errorf("contexto: %w", NaoEncontrado("fatura não encontrada")), http.StatusNotFound},
	}
	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			assert.Equal(t, caso.status, StatusHTTP(caso.err))
		})
	}
}

func TestEhTipo(t *testing.T) {
	err := EstadoInvalido("parcela já paga")
	assert.True(t, EhTipo(err, TipoEstado))
	assert.False(t, EhTipo(err, TipoValidacao))
	assert.False(t, EhTipo(errors.New("cru"), TipoEstado))
	assert.True(t, EhTipo(fmt.Errorf("ctx: %w", err), TipoEstado))
}

func TestDeGorm(t *testing.T) {
	assert.NoError(t, DeGorm(nil, "boleto"))
	assert.True(t, EhTipo(DeGorm(gorm.ErrRecordNotFound, "boleto"), TipoNaoEncontrado))
	assert.True(t, EhTipo(DeGorm(gorm.ErrDuplicatedKey, "fatura"), TipoIntegridade))

	outro := errors.New("conexão caiu")
	assert.Equal(t, outro, DeGorm(outro, "boleto"))
}

func TestErroPreservaCausa(t *testing.T) {
	causa := errors.New("timeout")
	err := Gateway(causa, "falha ao consultar cobrança")
	assert.ErrorIs(t, err, causa)
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "falha ao consultar cobrança")
}
