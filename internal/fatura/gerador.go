package fatura

import (
	"errors"
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
	"github.com/NexumEnergia/api-cobranca/internal/cliente"
	"github.com/NexumEnergia/api-cobranca/internal/contrato"
	"github.com/NexumEnergia/api-cobranca/internal/vencimento"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FalhaGeracao registra o erro de um cliente durante a geração em lote.
type FalhaGeracao struct {
	ClienteID uint   `json:"clienteId"`
	Erro      string `json:"erro"`
}

// Gerador materializa faturas a partir da agenda de vencimentos. A chave de
// idempotência é (cliente, vencimento): gerar duas vezes nunca duplica, e a
// violação de unicidade vinda de geração concorrente é tratada como "já
// existe".
type Gerador struct {
	Repo      *Repository
	Contratos *contrato.Repository
	Clientes  cliente.Repository
	Log       *zap.Logger
}

func NewGerador(repo *Repository, contratos *contrato.Repository, clientes cliente.Repository, log *zap.Logger) *Gerador {
	return &Gerador{Repo: repo, Contratos: contratos, Clientes: clientes, Log: log}
}

func novoNumero() string {
	return "FAT-" + uuid.NewString()
}

// criarSeAusente cria a fatura se o cliente ainda não tem uma para o
// vencimento. Devolve nil quando já existia.
func (g *Gerador) criarSeAusente(f *Fatura) (*Fatura, error) {
	existe, err := g.Repo.ExistePara(f.ClienteID, f.DataVencimento)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, nil
	}
	if err := g.Repo.Criar(f); err != nil {
		// Corrida com outra geração: a restrição de unicidade decide e o
		// perdedor trata como "já existe".
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

// GerarParaContrato cria as faturas pendentes da janela de vigência do
// contrato. Pode ser chamada de novo a qualquer momento sem duplicar.
func (g *Gerador) GerarParaContrato(c *contrato.Contrato) ([]Fatura, error) {
	datas := vencimento.CalcularVencimentos(
		c.InicioVigencia,
		c.DiaVencimento,
		c.Periodicidade,
		c.FimVigencia,
		vencimento.MaxOcorrenciasPadrao,
	)

	valor := c.ValorFatura()
	var criadas []Fatura
	for _, data := range datas {
		f, err := g.criarSeAusente(&Fatura{
			ClienteID:      c.ClienteID,
			ContratoID:     &c.ID,
			Numero:         novoNumero(),
			DataEmissao:    time.Now(),
			DataVencimento: data,
			ValorTotal:     valor,
			Status:         StatusPendente,
		})
		if err != nil {
			return criadas, err
		}
		if f != nil {
			criadas = append(criadas, *f)
		}
	}

	g.Log.Info("faturas geradas para contrato",
		zap.Uint("contratoId", c.ID),
		zap.Int("criadas", len(criadas)),
		zap.Int("vencimentos", len(datas)))
	return criadas, nil
}

// GerarParaPeriodo cria no máximo uma fatura por cliente elegível para o
// mês/ano de competência. Falhas individuais não interrompem o lote.
func (g *Gerador) GerarParaPeriodo(mes time.Month, ano int, clienteID *uint) ([]Fatura, []FalhaGeracao) {
	var clientes []cliente.Cliente
	if clienteID != nil {
		c, err := g.Clientes.BuscarPorID(g.Repo.DB, *clienteID)
		if err != nil {
			return nil, []FalhaGeracao{{ClienteID: *clienteID, Erro: "cliente não encontrado"}}
		}
		clientes = []cliente.Cliente{*c}
	} else {
		var err error
		clientes, err = g.Clientes.ListarElegiveis(g.Repo.DB)
		if err != nil {
			g.Log.Error("falha ao listar clientes elegíveis", zap.Error(err))
			return nil, []FalhaGeracao{{Erro: err.Error()}}
		}
	}

	var criadas []Fatura
	var falhas []FalhaGeracao
	for _, cli := range clientes {
		if !cli.ElegivelFaturamento() {
			if clienteID != nil {
				falhas = append(falhas, FalhaGeracao{
					ClienteID: cli.ID,
					Erro:      apperr.Validacao("cliente sem plano de faturamento").Error(),
				})
			}
			continue
		}

		venc := vencimento.VencimentoDoPeriodo(mes, ano, cli.DiaVencimento)
		f, err := g.criarSeAusente(&Fatura{
			ClienteID:      cli.ID,
			Numero:         novoNumero(),
			DataEmissao:    time.Now(),
			DataVencimento: venc,
			ValorTotal:     cli.ValorMensal,
			Status:         StatusPendente,
		})
		if err != nil {
			g.Log.Warn("geração falhou para cliente",
				zap.Uint("clienteId", cli.ID),
				zap.Error(err))
			falhas = append(falhas, FalhaGeracao{ClienteID: cli.ID, Erro: err.Error()})
			continue
		}
		if f != nil {
			criadas = append(criadas, *f)
		}
	}

	g.Log.Info("geração de período concluída",
		zap.Int("mes", int(mes)),
		zap.Int("ano", ano),
		zap.Int("criadas", len(criadas)),
		zap.Int("falhas", len(falhas)))
	return criadas, falhas
}

// RegistrarPagamento grava o valor pago; a fatura vira "pago" quando o valor
// cobre o total. Fatura paga não é rebaixada.
func (g *Gerador) RegistrarPagamento(id uint, valorPago float64) (*Fatura, error) {
	if valorPago <= 0 {
		return nil, apperr.Validacao("valor pago deve ser positivo")
	}
	f, err := g.Repo.FindByID(id)
	if err != nil {
		return nil, apperr.DeGorm(err, "fatura")
	}
	if f.Status == StatusPaga {
		return nil, apperr.EstadoInvalido("fatura %d já está paga", id)
	}

	f.ValorPago += valorPago
	if f.ValorPago >= f.ValorTotal {
		agora := time.Now()
		f.Status = StatusPaga
		f.DataPagamento = &agora
	}
	if err := g.Repo.Salvar(f); err != nil {
		return nil, apperr.DeGorm(err, "fatura")
	}
	return f, nil
}
