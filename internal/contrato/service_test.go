package contrato

import (
	"strings"
	"testing"
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
	"github.com/NexumEnergia/api-cobranca/internal/vencimento"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewService(NewRepository(db), zap.NewNop())
}

func dtoValido() CriarContratoDTO {
	return CriarContratoDTO{
		ClienteID:      1,
		Tipo:           "Gestão",
		Valor:          1500,
		Desconto:       100,
		DiaVencimento:  10,
		Periodicidade:  vencimento.Mensal,
		InicioVigencia: time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
		FimVigencia:    time.Date(2027, time.January, 15, 0, 0, 0, 0, time.UTC),
		Renovacao:      RenovacaoAutomatica,
		HashDocumento:  "abc123",
	}
}

func TestCriarComecaAguardando(t *testing.T) {
	s := newTestService(t)

	c, err := s.Criar(dtoValido(), 7)
	require.NoError(t, err)
	assert.Equal(t, StatusAguardando, c.Status)

	hist, err := s.Historico(c.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "status", hist[0].Campo)
	assert.Equal(t, string(StatusAguardando), hist[0].ValorNovo)
}

func TestCriarValidacoes(t *testing.T) {
	s := newTestService(t)

	casos := []struct {
		nome  string
		muda  func(*CriarContratoDTO)
	}{
		{"valor zero", func(d *CriarContratoDTO) { d.Valor = 0 }},
		{"desconto maior que valor", func(d *CriarContratoDTO) { d.Desconto = 2000 }},
		{"dia 0", func(d *CriarContratoDTO) { d.DiaVencimento = 0 }},
		{"dia 32", func(d *CriarContratoDTO) { d.DiaVencimento = 32 }},
		{"periodicidade desconhecida", func(d *CriarContratoDTO) { d.Periodicidade = "quinzenal" }},
		{"vigencia invertida", func(d *CriarContratoDTO) { d.FimVigencia = d.InicioVigencia.AddDate(-1, 0, 0) }},
	}
	for _, tc := range casos {
		dto := dtoValido()
		tc.muda(&dto)
		_, err := s.Criar(dto, 1)
		if !apperr.EhTipo(err, apperr.TipoValidacao) {
			t.Fatalf("%s: esperava erro de validação, veio %v", tc.nome, err)
		}
	}
}

func TestAssinarFluxoCompleto(t *testing.T) {
	s := newTestService(t)
	c, err := s.Criar(dtoValido(), 1)
	require.NoError(t, err)

	assinado, err := s.Assinar(c.ID, "assinatura-blob", "abc123", 42)
	require.NoError(t, err)
	assert.Equal(t, StatusAssinado, assinado.Status)
	assert.NotNil(t, assinado.DataAssinatura)
	assert.Equal(t, uint(42), assinado.SignatarioID)
}

func TestAssinarHashDivergente(t *testing.T) {
	s := newTestService(t)
	c, err := s.Criar(dtoValido(), 1)
	require.NoError(t, err)

	_, err = s.Assinar(c.ID, "blob", "hash-errado", 42)
	assert.True(t, apperr.EhTipo(err, apperr.TipoIntegridade), "esperava erro de integridade, veio %v", err)

	recarregado, err := s.Repo.BuscarPorID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAguardando, recarregado.Status)
}

func TestAssinarForaDeAguardandoFalha(t *testing.T) {
	s := newTestService(t)
	c, err := s.Criar(dtoValido(), 1)
	require.NoError(t, err)

	_, err = s.Assinar(c.ID, "blob", "abc123", 42)
	require.NoError(t, err)

	// Assinado não assina de novo.
	_, err = s.Assinar(c.ID, "blob", "abc123", 42)
	assert.True(t, apperr.EhTipo(err, apperr.TipoEstado), "esperava erro de estado, veio %v", err)

	_, err = s.Liberar(c.ID, 1, "")
	require.NoError(t, err)

	// Liberado também não.
	_, err = s.Assinar(c.ID, "blob", "abc123", 42)
	assert.True(t, apperr.EhTipo(err, apperr.TipoEstado))

	recarregado, err := s.Repo.BuscarPorID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusLiberado, recarregado.Status)
}

func TestLiberarDeAguardando(t *testing.T) {
	s := newTestService(t)
	c, err := s.Criar(dtoValido(), 1)
	require.NoError(t, err)

	liberado, err := s.Liberar(c.ID, 1, "liberação antecipada")
	require.NoError(t, err)
	assert.Equal(t, StatusLiberado, liberado.Status)

	// Liberado é terminal.
	_, err = s.Liberar(c.ID, 1, "")
	assert.True(t, apperr.EhTipo(err, apperr.TipoEstado))
}

func TestExcluirMantemHistorico(t *testing.T) {
	s := newTestService(t)
	c, err := s.Criar(dtoValido(), 1)
	require.NoError(t, err)

	require.NoError(t, s.Excluir(c.ID, 9, "encerramento"))

	// Fora das listagens ativas.
	ativos, err := s.Repo.ListarAtivos()
	require.NoError(t, err)
	assert.Empty(t, ativos)

	_, err = s.Repo.BuscarPorID(c.ID)
	assert.Error(t, err)

	// Histórico continua acessível.
	hist, err := s.Historico(c.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 2)

	// Excluído não exclui de novo.
	err = s.Excluir(c.ID, 9, "")
	assert.True(t, apperr.EhTipo(err, apperr.TipoNaoEncontrado))
}

func TestRenovarDeslocaVigencia(t *testing.T) {
	s := newTestService(t)
	c, err := s.Criar(dtoValido(), 1)
	require.NoError(t, err)

	sucessor, err := s.Renovar(c.ID, 1)
	require.NoError(t, err)

	dur := c.FimVigencia.Sub(c.InicioVigencia)
	assert.True(t, sucessor.InicioVigencia.Equal(c.InicioVigencia.Add(dur)))
	assert.True(t, sucessor.FimVigencia.Equal(c.FimVigencia.Add(dur)))
	assert.Equal(t, c.Valor, sucessor.Valor)
	assert.Equal(t, c.DiaVencimento, sucessor.DiaVencimento)
	assert.Equal(t, StatusAguardando, sucessor.Status)
	require.NotNil(t, sucessor.AntecessorID)
	assert.Equal(t, c.ID, *sucessor.AntecessorID)

	antecessor, err := s.Repo.BuscarPorID(c.ID)
	require.NoError(t, err)
	require.NotNil(t, antecessor.SucessorID)
	assert.Equal(t, sucessor.ID, *antecessor.SucessorID)

	// Renovar de novo falha: já tem sucessor.
	_, err = s.Renovar(c.ID, 1)
	assert.True(t, apperr.EhTipo(err, apperr.TipoEstado))
}

func TestRenovarExigePoliticaAutomatica(t *testing.T) {
	s := newTestService(t)
	dto := dtoValido()
	dto.Renovacao = RenovacaoManual
	c, err := s.Criar(dto, 1)
	require.NoError(t, err)

	_, err = s.Renovar(c.ID, 1)
	assert.True(t, apperr.EhTipo(err, apperr.TipoValidacao), "esperava erro de validação, veio %v", err)
}

func TestAtualizarParcialGravaHistoricoPorCampo(t *testing.T) {
	s := newTestService(t)
	c, err := s.Criar(dtoValido(), 1)
	require.NoError(t, err)

	novoValor := 1800.0
	novoDia := 5
	atualizado, err := s.Atualizar(c.ID, AtualizacaoContrato{
		Valor:         &novoValor,
		DiaVencimento: &novoDia,
	}, 3, "reajuste anual")
	require.NoError(t, err)
	assert.Equal(t, 1800.0, atualizado.Valor)
	assert.Equal(t, 5, atualizado.DiaVencimento)
	// Campos não enviados ficam como estavam.
	assert.Equal(t, 100.0, atualizado.Desconto)

	hist, err := s.Historico(c.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3) // criação + valor + dia
	campos := map[string]bool{}
	for _, hEntry := range hist {
		campos[hEntry.Campo] = true
	}
	assert.True(t, campos["valor"])
	assert.True(t, campos["dia_vencimento"])
}

func TestAtualizarSemMudancaNaoGravaHistorico(t *testing.T) {
	s := newTestService(t)
	c, err := s.Criar(dtoValido(), 1)
	require.NoError(t, err)

	mesmoTipo := c.Tipo
	_, err = s.Atualizar(c.ID, AtualizacaoContrato{Tipo: &mesmoTipo}, 1, "")
	require.NoError(t, err)

	hist, err := s.Historico(c.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}
