package boleto

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
	"github.com/NexumEnergia/api-cobranca/internal/cliente"
	"github.com/NexumEnergia/api-cobranca/internal/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Emissao é o pedido de emissão de um boleto, atrelado a uma fatura ou a uma
// parcela.
type Emissao struct {
	ClienteID      uint
	FaturaID       *uint
	ParcelaID      *uint
	Valor          float64
	DataVencimento time.Time
	Multa          float64
	Juros          float64
}

// FalhaConciliacao registra o erro de um item da conciliação em lote.
type FalhaConciliacao struct {
	BoletoID uint   `json:"boletoId"`
	Erro     string `json:"erro"`
}

// Service emite e concilia boletos contra o gateway. As chamadas externas
// nunca acontecem com transação aberta: primeiro grava o registro local
// "pendente", chama o gateway, e persiste o resultado numa segunda escrita
// curta.
type Service struct {
	Repo     *Repository
	Clientes cliente.Repository
	Gateway  gateway.Client
	Log      *zap.Logger
}

func NewService(repo *Repository, clientes cliente.Repository, gw gateway.Client, log *zap.Logger) *Service {
	return &Service{Repo: repo, Clientes: clientes, Gateway: gw, Log: log}
}

// Emitir cria o boleto local e tenta registrar a cobrança no gateway. Falha
// do gateway degrada para registro apenas local: logada, nunca propagada.
func (s *Service) Emitir(ctx context.Context, e Emissao) (*Boleto, error) {
	if e.FaturaID != nil && e.ParcelaID != nil {
		return nil, apperr.Validacao("boleto não pode referenciar fatura e parcela ao mesmo tempo")
	}
	if e.Valor <= 0 {
		return nil, apperr.Validacao("valor do boleto deve ser positivo")
	}
	// A referência só pode ter um boleto ativo por vez; reemissão exige
	// cancelar o anterior.
	if e.FaturaID != nil {
		if _, err := s.Repo.BuscarPorFatura(*e.FaturaID); err == nil {
			return nil, apperr.EstadoInvalido("fatura %d já tem boleto ativo", *e.FaturaID)
		}
	}
	if e.ParcelaID != nil {
		if _, err := s.Repo.BuscarPorParcela(*e.ParcelaID); err == nil {
			return nil, apperr.EstadoInvalido("parcela %d já tem boleto ativo", *e.ParcelaID)
		}
	}

	cli, err := s.Clientes.BuscarPorID(s.Repo.DB, e.ClienteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NaoEncontrado("cliente %d não encontrado", e.ClienteID)
		}
		return nil, err
	}
	if cli.Email == "" {
		return nil, apperr.Validacao("cliente %d sem e-mail cadastrado para emissão", e.ClienteID)
	}

	b := &Boleto{
		ClienteID:       e.ClienteID,
		FaturaID:        e.FaturaID,
		ParcelaID:       e.ParcelaID,
		NumeroDocumento: uuid.NewString(),
		Valor:           e.Valor,
		DataVencimento:  e.DataVencimento,
		Status:          StatusPendente,
		Ativo:           true,
	}
	if err := s.Repo.Criar(b); err != nil {
		return nil, apperr.DeGorm(err, "boleto")
	}

	cob, err := s.Gateway.CriarCobranca(ctx, gateway.NovaCobranca{
		Pagador:    gateway.Pagador{Nome: cli.Nome, CNPJ: cli.CNPJ, Email: cli.Email},
		Valor:      e.Valor,
		Vencimento: e.DataVencimento,
		Referencia: b.NumeroDocumento,
		Multa:      e.Multa,
		Juros:      e.Juros,
	})
	if err != nil {
		// Modo degradado: o boleto fica sem cobrança externa e uma nova
		// emissão pode ser tentada depois.
		s.Log.Warn("emissão degradada, boleto sem cobrança externa",
			zap.Uint("boletoId", b.ID),
			zap.String("referencia", e.Referencia()),
			zap.Error(err))
		return b, nil
	}

	b.CobrancaID = &cob.ID
	b.StatusExterno = "aberto"
	b.CodigoBarras = cob.CodigoBarras
	b.LinhaDigitavel = cob.LinhaDigitavel
	b.URL = cob.URL
	if err := s.Repo.Salvar(b); err != nil {
		return nil, apperr.DeGorm(err, "boleto")
	}

	s.Log.Info("boleto emitido",
		zap.Uint("boletoId", b.ID),
		zap.String("cobrancaId", cob.ID))
	return b, nil
}

// Conciliar sincroniza um boleto com o status autoritativo do gateway. O
// status externo é gravado verbatim; valor e vencimento locais não mudam.
func (s *Service) Conciliar(ctx context.Context, id uint) (*Boleto, error) {
	b, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, apperr.DeGorm(err, "boleto")
	}
	if b.CobrancaID == nil {
		return nil, apperr.Validacao("boleto %d não tem cobrança externa para conciliar", id)
	}

	sit, err := s.Gateway.ConsultarCobranca(ctx, *b.CobrancaID)
	if err != nil {
		return nil, err
	}

	b.StatusExterno = sit.Status
	if local, ok := mapearStatusExterno(sit.Status); ok {
		b.Status = local
	}
	if err := s.Repo.Salvar(b); err != nil {
		return nil, apperr.DeGorm(err, "boleto")
	}
	return b, nil
}

// ConciliarTodos concilia cada boleto "pendente" com cobrança externa.
// Falhas individuais não interrompem o lote; são coletadas e devolvidas.
func (s *Service) ConciliarTodos(ctx context.Context) ([]Boleto, []FalhaConciliacao) {
	pendentes, err := s.Repo.ListarPendentesComCobranca()
	if err != nil {
		s.Log.Error("falha ao listar boletos pendentes", zap.Error(err))
		return nil, []FalhaConciliacao{{Erro: err.Error()}}
	}

	var conciliados []Boleto
	var falhas []FalhaConciliacao
	for _, b := range pendentes {
		atualizado, err := s.Conciliar(ctx, b.ID)
		if err != nil {
			s.Log.Warn("conciliação falhou, tentará no próximo ciclo",
				zap.Uint("boletoId", b.ID),
				zap.Error(err))
			falhas = append(falhas, FalhaConciliacao{BoletoID: b.ID, Erro: err.Error()})
			continue
		}
		conciliados = append(conciliados, *atualizado)
	}
	return conciliados, falhas
}

// Cancelar cancela o boleto local e, em melhor esforço, a cobrança externa.
// Boleto pago não pode ser cancelado.
func (s *Service) Cancelar(ctx context.Context, id uint) (*Boleto, error) {
	b, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, apperr.DeGorm(err, "boleto")
	}
	if b.Status == StatusPago {
		return nil, apperr.EstadoInvalido("boleto %d já foi pago", id)
	}
	if b.Status == StatusCancelado {
		return b, nil
	}

	if b.CobrancaID != nil {
		if _, err := s.Gateway.CancelarCobranca(ctx, *b.CobrancaID); err != nil {
			s.Log.Warn("cancelamento externo falhou, boleto cancelado só localmente",
				zap.Uint("boletoId", b.ID),
				zap.Error(err))
		}
	}

	b.Status = StatusCancelado
	b.Ativo = false
	if err := s.Repo.Salvar(b); err != nil {
		return nil, apperr.DeGorm(err, "boleto")
	}

	s.Log.Info("boleto cancelado", zap.Uint("boletoId", b.ID))
	return b, nil
}

// Referencia descreve o dono do boleto para logs.
func (e Emissao) Referencia() string {
	switch {
	case e.FaturaID != nil:
		return fmt.Sprintf("fatura %d", *e.FaturaID)
	case e.ParcelaID != nil:
		return fmt.Sprintf("parcela %d", *e.ParcelaID)
	default:
		return "avulso"
	}
}
