package boleto

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
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
	falhaCriar     bool
	falhaConsultar map[string]bool
	situacoes      map[string]gateway.SituacaoCobranca
	cancelados     []string
	seq            int
}

func novoGatewayFake() *gatewayFake {
	return &gatewayFake{
		falhaConsultar: map[string]bool{},
		situacoes:      map[string]gateway.SituacaoCobranca{},
	}
}

func (g *gatewayFake) CriarCobranca(_ context.Context, nova gateway.NovaCobranca) (*gateway.Cobranca, error) {
	if g.falhaCriar {
		return nil, apperr.Gateway(errors.New("timeout"), "falha na chamada ao gateway")
	}
	g.seq++
	id := fmt.Sprintf("cob-%d", g.seq)
	g.situacoes[id] = gateway.SituacaoCobranca{Status: "aberto", Valor: nova.Valor, Vencimento: nova.Vencimento}
	return &gateway.Cobranca{
		ID:             id,
		CodigoBarras:   "23790.12345 67890",
		LinhaDigitavel: "23790123456789",
		URL:            "https://gw.example/" + id,
	}, nil
}

func (g *gatewayFake) ConsultarCobranca(_ context.Context, id string) (*gateway.SituacaoCobranca, error) {
	if g.falhaConsultar[id] {
		return nil, apperr.Gateway(errors.New("timeout"), "falha na chamada ao gateway")
	}
	sit, ok := g.situacoes[id]
	if !ok {
		return nil, apperr.Gateway(errors.New("404"), "gateway recusou a chamada")
	}
	return &sit, nil
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
	require.NoError(t, Migrate(db))

	gw := novoGatewayFake()
	s := NewService(NewRepository(db), cliente.NewRepository(), gw, zap.NewNop())
	return s, gw, db
}

func criaCliente(t *testing.T, db *gorm.DB, email string) *cliente.Cliente {
	t.Helper()
	c := &cliente.Cliente{Nome: "Empresa X", CNPJ: "00.000.000/0001-" + email, Email: email}
	require.NoError(t, db.Create(c).Error)
	return c
}

func emissaoDe(clienteID uint) Emissao {
	return Emissao{
		ClienteID:      clienteID,
		Valor:          250,
		DataVencimento: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Multa:          0.02,
		Juros:          0.01,
	}
}

func TestEmitirComGateway(t *testing.T) {
	s, _, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")

	b, err := s.Emitir(context.Background(), emissaoDe(c.ID))
	require.NoError(t, err)
	assert.Equal(t, StatusPendente, b.Status)
	require.NotNil(t, b.CobrancaID)
	assert.Equal(t, "aberto", b.StatusExterno)
	assert.NotEmpty(t, b.NumeroDocumento)
	assert.NotEmpty(t, b.LinhaDigitavel)
}

func TestEmitirDegradadoQuandoGatewayFalha(t *testing.T) {
	s, gw, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")
	gw.falhaCriar = true

	// Falha de gateway não é erro: o boleto fica só local.
	b, err := s.Emitir(context.Background(), emissaoDe(c.ID))
	require.NoError(t, err)
	assert.Nil(t, b.CobrancaID)
	assert.Equal(t, StatusPendente, b.Status)

	salvo, err := s.Repo.FindByID(b.ID)
	require.NoError(t, err)
	assert.Nil(t, salvo.CobrancaID)
}

func TestEmitirExigeEmail(t *testing.T) {
	s, _, db := newTestService(t)
	c := criaCliente(t, db, "")

	_, err := s.Emitir(context.Background(), emissaoDe(c.ID))
	assert.True(t, apperr.EhTipo(err, apperr.TipoValidacao), "esperava erro de validação, veio %v", err)
}

func TestEmitirReferenciaExclusiva(t *testing.T) {
	s, _, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")

	fid, pid := uint(1), uint(2)
	e := emissaoDe(c.ID)
	e.FaturaID = &fid
	e.ParcelaID = &pid
	_, err := s.Emitir(context.Background(), e)
	assert.True(t, apperr.EhTipo(err, apperr.TipoValidacao))
}

func TestEmitirRecusaReferenciaComBoletoAtivo(t *testing.T) {
	s, _, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")

	fid := uint(7)
	e := emissaoDe(c.ID)
	e.FaturaID = &fid

	b, err := s.Emitir(context.Background(), e)
	require.NoError(t, err)

	_, err = s.Emitir(context.Background(), e)
	assert.True(t, apperr.EhTipo(err, apperr.TipoEstado), "esperava conflito, veio %v", err)

	// Depois de cancelado, a fatura pode receber um boleto novo.
	_, err = s.Cancelar(context.Background(), b.ID)
	require.NoError(t, err)
	_, err = s.Emitir(context.Background(), e)
	require.NoError(t, err)
}

func TestConciliarPagoNaoAlteraValores(t *testing.T) {
	s, gw, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")

	b, err := s.Emitir(context.Background(), emissaoDe(c.ID))
	require.NoError(t, err)

	gw.situacoes[*b.CobrancaID] = gateway.SituacaoCobranca{Status: "paid", Valor: 999, Vencimento: time.Now()}

	conciliado, err := s.Conciliar(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPago, conciliado.Status)
	assert.Equal(t, "paid", conciliado.StatusExterno) // verbatim
	// Valor e vencimento locais não mudam na conciliação.
	assert.Equal(t, 250.0, conciliado.Valor)
	assert.True(t, conciliado.DataVencimento.Equal(b.DataVencimento))
}

func TestConciliarStatusDesconhecidoNaoMudaLocal(t *testing.T) {
	s, gw, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")

	b, err := s.Emitir(context.Background(), emissaoDe(c.ID))
	require.NoError(t, err)

	gw.situacoes[*b.CobrancaID] = gateway.SituacaoCobranca{Status: "processing"}

	conciliado, err := s.Conciliar(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendente, conciliado.Status)
	assert.Equal(t, "processing", conciliado.StatusExterno)
}

func TestConciliarSemCobrancaExterna(t *testing.T) {
	s, gw, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")
	gw.falhaCriar = true

	b, err := s.Emitir(context.Background(), emissaoDe(c.ID))
	require.NoError(t, err)

	_, err = s.Conciliar(context.Background(), b.ID)
	assert.True(t, apperr.EhTipo(err, apperr.TipoValidacao))
}

func TestConciliarTodosIsolaFalhas(t *testing.T) {
	s, gw, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")

	b1, err := s.Emitir(context.Background(), emissaoDe(c.ID))
	require.NoError(t, err)
	e2 := emissaoDe(c.ID)
	e2.DataVencimento = e2.DataVencimento.AddDate(0, 1, 0)
	b2, err := s.Emitir(context.Background(), e2)
	require.NoError(t, err)

	gw.situacoes[*b1.CobrancaID] = gateway.SituacaoCobranca{Status: "paid"}
	gw.falhaConsultar[*b2.CobrancaID] = true

	conciliados, falhas := s.ConciliarTodos(context.Background())
	require.Len(t, conciliados, 1)
	require.Len(t, falhas, 1)
	assert.Equal(t, b1.ID, conciliados[0].ID)
	assert.Equal(t, b2.ID, falhas[0].BoletoID)

	// O item que falhou continua pendente para o próximo ciclo.
	pendentes, err := s.Repo.ListarPendentesComCobranca()
	require.NoError(t, err)
	require.Len(t, pendentes, 1)
	assert.Equal(t, b2.ID, pendentes[0].ID)
}

func TestCancelarBoletoPagoFalha(t *testing.T) {
	s, gw, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")

	b, err := s.Emitir(context.Background(), emissaoDe(c.ID))
	require.NoError(t, err)
	gw.situacoes[*b.CobrancaID] = gateway.SituacaoCobranca{Status: "paid"}
	_, err = s.Conciliar(context.Background(), b.ID)
	require.NoError(t, err)

	_, err = s.Cancelar(context.Background(), b.ID)
	assert.True(t, apperr.EhTipo(err, apperr.TipoEstado), "esperava conflito, veio %v", err)
}

func TestCancelarDesativaEChamaGateway(t *testing.T) {
	s, gw, db := newTestService(t)
	c := criaCliente(t, db, "x@empresa.com")

	b, err := s.Emitir(context.Background(), emissaoDe(c.ID))
	require.NoError(t, err)

	cancelado, err := s.Cancelar(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelado, cancelado.Status)
	assert.False(t, cancelado.Ativo)
	require.Len(t, gw.cancelados, 1)
	assert.Equal(t, *b.CobrancaID, gw.cancelados[0])

	// Cancelar de novo é idempotente.
	deNovo, err := s.Cancelar(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelado, deNovo.Status)
	assert.Len(t, gw.cancelados, 1)
}
