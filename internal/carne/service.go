// internal/carne/service.go
package carne

import (
	"context"
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
	"github.com/NexumEnergia/api-cobranca/internal/boleto"
	"go.uber.org/zap"
)

// MaxParcelas limita o tamanho de um carnê.
const MaxParcelas = 360

// CriarCarneDTO é o pedido de criação de um plano de parcelamento.
type CriarCarneDTO struct {
	ClienteID          uint      `json:"clienteId" validate:"required"`
	ValorTotal         float64   `json:"valorTotal" validate:"required,gt=0"`
	QtdParcelas        int       `json:"qtdParcelas" validate:"required,gt=0"`
	DataInicio         time.Time `json:"dataInicio" validate:"required"`
	PrimeiroVencimento time.Time `json:"primeiroVencimento" validate:"required"`
	IntervaloDias      int       `json:"intervaloDias" validate:"required,gt=0"`
	EmitirBoletos      bool      `json:"emitirBoletos"`
}

// Service cria e administra carnês. O plano e todas as parcelas nascem na
// mesma transação; a emissão de boletos acontece depois do commit e nunca
// aborta a criação.
type Service struct {
	Repo    *Repository
	Boletos *boleto.Service
	Log     *zap.Logger
}

func NewService(repo *Repository, boletos *boleto.Service, log *zap.Logger) *Service {
	return &Service{Repo: repo, Boletos: boletos, Log: log}
}

// Criar valida, cria o carnê com as N parcelas e, se pedido, emite os
// boletos de cada parcela em melhor esforço.
func (s *Service) Criar(ctx context.Context, dto CriarCarneDTO) (*Carne, error) {
	if dto.QtdParcelas <= 0 || dto.QtdParcelas > MaxParcelas {
		return nil, apperr.Validacao("quantidade de parcelas deve estar entre 1 e %d", MaxParcelas)
	}
	if dto.ValorTotal <= 0 {
		return nil, apperr.Validacao("valor total deve ser positivo")
	}
	if dto.IntervaloDias <= 0 {
		return nil, apperr.Validacao("intervalo entre parcelas deve ser positivo")
	}

	porParcela, ultima := dividirValor(dto.ValorTotal, dto.QtdParcelas)

	c := &Carne{
		ClienteID:          dto.ClienteID,
		ValorTotal:         dto.ValorTotal,
		QtdParcelas:        dto.QtdParcelas,
		ValorParcela:       porParcela,
		Status:             CarneAtivo,
		DataInicio:         dto.DataInicio,
		PrimeiroVencimento: dto.PrimeiroVencimento,
		IntervaloDias:      dto.IntervaloDias,
	}

	tx := s.Repo.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	repo := s.Repo.WithDB(tx)

	if err := repo.Criar(c); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	parcelas := make([]*Parcela, 0, dto.QtdParcelas)
	for i := 0; i < dto.QtdParcelas; i++ {
		valor := porParcela
		if i == dto.QtdParcelas-1 {
			valor = ultima
		}
		parcelas = append(parcelas, &Parcela{
			CarneID:        c.ID,
			Numero:         i + 1,
			Valor:          valor,
			DataVencimento: dto.PrimeiroVencimento.AddDate(0, 0, i*dto.IntervaloDias),
			Status:         ParcelaPendente,
		})
	}
	if err := repo.CriarParcelasEmLote(parcelas); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	s.Log.Info("carnê criado",
		zap.Uint("carneId", c.ID),
		zap.Int("parcelas", dto.QtdParcelas),
		zap.Float64("valorTotal", dto.ValorTotal))

	// Emissão pós-commit: parcelas podem ficar sem boleto e serem emitidas
	// depois, a criação do plano nunca volta atrás por causa do gateway.
	if dto.EmitirBoletos {
		s.emitirBoletos(ctx, c.ClienteID, parcelas)
	}

	return s.Repo.FindByID(c.ID)
}

func (s *Service) emitirBoletos(ctx context.Context, clienteID uint, parcelas []*Parcela) {
	for _, p := range parcelas {
		pid := p.ID
		b, err := s.Boletos.Emitir(ctx, boleto.Emissao{
			ClienteID:      clienteID,
			ParcelaID:      &pid,
			Valor:          p.Valor,
			DataVencimento: p.DataVencimento,
		})
		if err != nil {
			s.Log.Warn("emissão de boleto da parcela falhou",
				zap.Uint("parcelaId", p.ID),
				zap.Error(err))
			continue
		}
		if b.CobrancaID != nil {
			p.CobrancaID = b.CobrancaID
			if err := s.Repo.SalvarParcela(p); err != nil {
				s.Log.Warn("não gravou referência da cobrança na parcela",
					zap.Uint("parcelaId", p.ID),
					zap.Error(err))
			}
		}
	}
}

// RegistrarPagamento acumula o valor pago na parcela: "pago" quando cobre o
// valor, "parcial" caso contrário. Quando a última parcela é quitada o carnê
// vira "finalizado".
func (s *Service) RegistrarPagamento(parcelaID uint, valorPago float64) (*Parcela, error) {
	if valorPago <= 0 {
		return nil, apperr.Validacao("valor pago deve ser positivo")
	}

	p, err := s.Repo.FindParcela(parcelaID)
	if err != nil {
		return nil, apperr.DeGorm(err, "parcela")
	}
	switch p.Status {
	case ParcelaCancelada:
		return nil, apperr.EstadoInvalido("parcela %d está cancelada", parcelaID)
	case ParcelaPaga:
		return nil, apperr.EstadoInvalido("parcela %d já está paga", parcelaID)
	}

	p.ValorPago += valorPago
	if p.ValorPago >= p.Valor {
		agora := time.Now()
		p.Status = ParcelaPaga
		p.DataPagamento = &agora
	} else {
		p.Status = ParcelaParcial
	}

	tx := s.Repo.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	repo := s.Repo.WithDB(tx)

	if err := repo.SalvarParcela(p); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if p.Status == ParcelaPaga {
		restantes, err := repo.ContarNaoPagas(p.CarneID)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if restantes == 0 {
			c, err := repo.FindByID(p.CarneID)
			if err != nil {
				_ = tx.Rollback()
				return nil, err
			}
			c.Status = CarneFinalizado
			if err := repo.Salvar(c); err != nil {
				_ = tx.Rollback()
				return nil, err
			}
			s.Log.Info("carnê finalizado", zap.Uint("carneId", c.ID))
		}
	}

	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return p, nil
}

// Cancelar cancela em melhor esforço as cobranças externas das parcelas não
// pagas e marca plano e parcelas como "cancelado".
func (s *Service) Cancelar(ctx context.Context, id uint) (*Carne, error) {
	c, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, apperr.DeGorm(err, "carnê")
	}
	if c.Status == CarneFinalizado {
		return nil, apperr.EstadoInvalido("carnê %d já foi finalizado", id)
	}
	if c.Status == CarneCancelado {
		return c, nil
	}

	for _, p := range c.Parcelas {
		if p.Status == ParcelaPaga {
			continue
		}
		b, err := s.Boletos.Repo.BuscarPorParcela(p.ID)
		if err != nil {
			continue // parcela sem boleto
		}
		if _, err := s.Boletos.Cancelar(ctx, b.ID); err != nil {
			s.Log.Warn("cancelamento do boleto da parcela falhou",
				zap.Uint("parcelaId", p.ID),
				zap.Uint("boletoId", b.ID),
				zap.Error(err))
		}
	}

	tx := s.Repo.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	repo := s.Repo.WithDB(tx)

	if err := repo.MarcarStatusNaoPagas(c.ID, ParcelaCancelada); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	c.Status = CarneCancelado
	if err := repo.Salvar(c); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	s.Log.Info("carnê cancelado", zap.Uint("carneId", c.ID))
	return s.Repo.FindByID(c.ID)
}

// Excluir tenta a exclusão física do carnê; quando há boleto atrelado a
// alguma parcela, ou o banco recusa a exclusão, cai para o cancelamento em
// vez de perder dados.
func (s *Service) Excluir(ctx context.Context, id uint) error {
	c, err := s.Repo.FindByID(id)
	if err != nil {
		return apperr.DeGorm(err, "carnê")
	}

	for _, p := range c.Parcelas {
		if _, err := s.Boletos.Repo.BuscarPorParcela(p.ID); err == nil {
			s.Log.Info("carnê tem boletos emitidos, exclusão vira cancelamento",
				zap.Uint("carneId", id))
			_, err := s.Cancelar(ctx, id)
			return err
		}
	}

	tx := s.Repo.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := s.Repo.WithDB(tx).ExcluirFisicamente(id); err != nil {
		_ = tx.Rollback()
		s.Log.Warn("exclusão física recusada, caindo para cancelamento",
			zap.Uint("carneId", id),
			zap.Error(err))
		_, err := s.Cancelar(ctx, id)
		return err
	}
	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	s.Log.Info("carnê excluído fisicamente", zap.Uint("carneId", id))
	return nil
}
