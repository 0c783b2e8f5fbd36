package carne

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
	"github.com/NexumEnergia/api-cobranca/internal/boleto"
	"github.com/NexumEnergia/api-cobranca/internal/cliente"
	"github.com/NexumEnergia/api-cobranca/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gatewayFake implementa gateway.Client em memória para os testes.
type gatewayFake struct {
	criadas    int
	cancelados []string
}

func (g *gatewayFake) CriarCobranca(_ context.Context, _ gateway.NovaCobranca) (*gateway.Cobranca, error) {
	g.criadas++
	id := fmt.Sprintf("cob-%d", g.criadas)
	return &gateway.Cobranca{ID: id, LinhaDigitavel: "23790123456789"}, nil
}

func (g *gatewayFake) ConsultarCobranca(_ context.Context, _ string) (*gateway.SituacaoCobranca, error) {
	return nil, apperr.Gateway(errors.New("não usado"), "falha na chamada ao gateway")
}

func (g *gatewayFake) CancelarCobranca(_ context.Context, id string) (bool, error) {
	g.cancelados = append(g.cancelados, id)
	return true, nil
}

func newTestService(t *testing.T) (*Service, *gatewayFake, *gorm.DB) {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, cliente.Migrate(db))
	require.NoError(t, boleto.Migrate(db))
	require.NoError(t, Migrate(db))

	gw := &gatewayFake{}
	boletos := boleto.NewService(boleto.NewRepository(db), cliente.NewRepository(), gw, zap.NewNop())
	s := NewService(NewRepository(db), boletos, zap.NewNop())
	return s, gw, db
}

func criaCliente(t *testing.T, db *gorm.DB) *cliente.Cliente {
	t.Helper()
	c := &cliente.Cliente{Nome: "Empresa X", CNPJ: "11.111.111/0001-11", Email: "x@empresa.com"}
	require.NoError(t, db.Create(c).Error)
	return c
}

func dtoValido(clienteID uint) CriarCarneDTO {
	return CriarCarneDTO{
		ClienteID:          clienteID,
		ValorTotal:         1200,
		QtdParcelas:        12,
		DataInicio:         time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		PrimeiroVencimento: time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
		IntervaloDias:      30,
	}
}

func TestCriarGeraParcelasEspacadas(t *testing.T) {
	s, _, db := newTestService(t)
	cli := criaCliente(t, db)

	c, err := s.Criar(context.Background(), dtoValido(cli.ID))
	require.NoError(t, err)
	assert.Equal(t, CarneAtivo, c.Status)
	assert.Equal(t, 100.0, c.ValorParcela)
	require.Len(t, c.Parcelas, 12)

	for i, p := range c.Parcelas {
		assert.Equal(t, i+1, p.Numero)
		assert.Equal(t, 100.0, p.Valor)
		assert.Equal(t, ParcelaPendente, p.Status)
		esperado := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i*30)
		assert.True(t, p.DataVencimento.Equal(esperado), "parcela %d venceu em %s", p.Numero, p.DataVencimento)
	}
}

func TestCriarUltimaParcelaAbsorveResto(t *testing.T) {
	s, _, db := newTestService(t)
	cli := criaCliente(t, db)

	dto := dtoValido(cli.ID)
	dto.ValorTotal = 1000
	dto.QtdParcelas = 3

	c, err := s.Criar(context.Background(), dto)
	require.NoError(t, err)
	require.Len(t, c.Parcelas, 3)
	assert.Equal(t, 333.33, c.Parcelas[0].Valor)
	assert.Equal(t, 333.33, c.Parcelas[1].Valor)
	assert.Equal(t, 333.34, c.Parcelas[2].Valor)
}

func TestCriarValidacoes(t *testing.T) {
	s, _, db := newTestService(t)
	cli := criaCliente(t, db)

	casos := []struct {
		nome  string
		mudar func(*CriarCarneDTO)
	}{
		{"sem parcelas", func(d *CriarCarneDTO) { d.QtdParcelas = 0 }},
		{"parcelas demais", func(d *CriarCarneDTO) { d.QtdParcelas = MaxParcelas + 1 }},
		{"valor zerado", func(d *CriarCarneDTO) { d.ValorTotal = 0 }},
		{"intervalo zerado", func(d *CriarCarneDTO) { d.IntervaloDias = 0 }},
	}
	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			dto := dtoValido(cli.ID)
			caso.mudar(&dto)
			_, err := s.Criar(context.Background(), dto)
			assert.True(t, apperr.EhTipo(err, apperr.TipoValidacao), "esperava erro de validação, veio %v", err)
		})
	}
}

func TestCriarComEmissaoDeBoletos(t *testing.T) {
	s, gw, db := newTestService(t)
	cli := criaCliente(t, db)

	dto := dtoValido(cli.ID)
	dto.QtdParcelas = 3
	dto.ValorTotal = 300
	dto.EmitirBoletos = true

	c, err := s.Criar(context.Background(), dto)
	require.NoError(t, err)
	assert.Equal(t, 3, gw.criadas)
	for _, p := range c.Parcelas {
		require.NotNil(t, p.CobrancaID, "parcela %d ficou sem cobrança", p.Numero)
	}
}

func TestRegistrarPagamentoParcialDepoisQuita(t *testing.T) {
	s, _, db := newTestService(t)
	cli := criaCliente(t, db)

	dto := dtoValido(cli.ID)
	dto.QtdParcelas = 2
	dto.ValorTotal = 200
	c, err := s.Criar(context.Background(), dto)
	require.NoError(t, err)

	p, err := s.RegistrarPagamento(c.Parcelas[0].ID, 40)
	require.NoError(t, err)
	assert.Equal(t, ParcelaParcial, p.Status)
	assert.Equal(t, 40.0, p.ValorPago)
	assert.Nil(t, p.DataPagamento)

	p, err = s.RegistrarPagamento(c.Parcelas[0].ID, 60)
	require.NoError(t, err)
	assert.Equal(t, ParcelaPaga, p.Status)
	assert.Equal(t, 100.0, p.ValorPago)
	require.NotNil(t, p.DataPagamento)

	// Pagar parcela quitada é conflito.
	_, err = s.RegistrarPagamento(c.Parcelas[0].ID, 10)
	assert.True(t, apperr.EhTipo(err, apperr.TipoEstado))

	// Uma parcela em aberto mantém o carnê ativo.
	atual, err := s.Repo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, CarneAtivo, atual.Status)
}

func TestUltimoPagamentoFinalizaCarne(t *testing.T) {
	s, _, db := newTestService(t)
	cli := criaCliente(t, db)

	dto := dtoValido(cli.ID)
	dto.QtdParcelas = 2
	dto.ValorTotal = 200
	c, err := s.Criar(context.Background(), dto)
	require.NoError(t, err)

	for _, p := range c.Parcelas {
		_, err := s.RegistrarPagamento(p.ID, 100)
		require.NoError(t, err)
	}

	atual, err := s.Repo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, CarneFinalizado, atual.Status)

	// Carnê finalizado não pode ser cancelado.
	_, err = s.Cancelar(context.Background(), c.ID)
	assert.True(t, apperr.EhTipo(err, apperr.TipoEstado))
}

func TestCancelarMantemParcelasPagas(t *testing.T) {
	s, gw, db := newTestService(t)
	cli := criaCliente(t, db)

	dto := dtoValido(cli.ID)
	dto.QtdParcelas = 3
	dto.ValorTotal = 300
	dto.EmitirBoletos = true
	c, err := s.Criar(context.Background(), dto)
	require.NoError(t, err)

	_, err = s.RegistrarPagamento(c.Parcelas[0].ID, 100)
	require.NoError(t, err)

	cancelado, err := s.Cancelar(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, CarneCancelado, cancelado.Status)
	assert.Equal(t, ParcelaPaga, cancelado.Parcelas[0].Status)
	assert.Equal(t, ParcelaCancelada, cancelado.Parcelas[1].Status)
	assert.Equal(t, ParcelaCancelada, cancelado.Parcelas[2].Status)
	// Só as cobranças das parcelas não pagas são canceladas no gateway.
	assert.Len(t, gw.cancelados, 2)

	// Cancelar de novo é idempotente.
	deNovo, err := s.Cancelar(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, CarneCancelado, deNovo.Status)
	assert.Len(t, gw.cancelados, 2)
}

func TestExcluirSemBoletosRemoveFisicamente(t *testing.T) {
	s, _, db := newTestService(t)
	cli := criaCliente(t, db)

	dto := dtoValido(cli.ID)
	dto.QtdParcelas = 2
	dto.ValorTotal = 200
	c, err := s.Criar(context.Background(), dto)
	require.NoError(t, err)

	require.NoError(t, s.Excluir(context.Background(), c.ID))

	_, err = s.Repo.FindByID(c.ID)
	assert.True(t, apperr.EhTipo(apperr.DeGorm(err, "carnê"), apperr.TipoNaoEncontrado))

	var restantes int64
	require.NoError(t, db.Model(&Parcela{}).Where("carne_id = ?", c.ID).Count(&restantes).Error)
	assert.Zero(t, restantes)
}

func TestExcluirComBoletosViraCancelamento(t *testing.T) {
	s, gw, db := newTestService(t)
	cli := criaCliente(t, db)

	dto := dtoValido(cli.ID)
	dto.QtdParcelas = 2
	dto.ValorTotal = 200
	dto.EmitirBoletos = true
	c, err := s.Criar(context.Background(), dto)
	require.NoError(t, err)

	require.NoError(t, s.Excluir(context.Background(), c.ID))

	atual, err := s.Repo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, CarneCancelado, atual.Status)
	assert.Len(t, gw.cancelados, 2)
}

func TestDividirValor(t *testing.T) {
	casos := []struct {
		total           float64
		n               int
		porParcela, fim float64
	}{
		{1200, 12, 100, 100},
		{1000, 3, 333.33, 333.34},
		{100, 7, 14.29, 14.26},
		{0.03, 2, 0.02, 0.01},
	}
	for _, caso := range casos {
		por, ultima := dividirValor(caso.total, caso.n)
		assert.Equal(t, caso.porParcela, por, "total %.2f em %d", caso.total, caso.n)
		assert.Equal(t, caso.fim, ultima, "total %.2f em %d", caso.total, caso.n)
	}
}
