package contrato

import (
	"fmt"
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
	"go.uber.org/zap"
)

// Service concentra as regras do ciclo de vida do contrato. Toda transição
// grava a mudança e as linhas de histórico na mesma transação: ou ambas
// confirmam, ou nada muda.
type Service struct {
	Repo *Repository
	Log  *zap.Logger
}

func NewService(repo *Repository, log *zap.Logger) *Service {
	return &Service{Repo: repo, Log: log}
}

func entrada(contratoID uint, campo, antigo, novo string, autor uint, motivo string) *HistoricoContrato {
	return &HistoricoContrato{
		ContratoID:  contratoID,
		Campo:       campo,
		ValorAntigo: antigo,
		ValorNovo:   novo,
		Autor:       autor,
		Motivo:      motivo,
	}
}

// Criar valida e persiste um contrato novo em "aguardando".
func (s *Service) Criar(dto CriarContratoDTO, autor uint) (*Contrato, error) {
	if dto.Valor <= 0 {
		return nil, apperr.Validacao("valor do contrato deve ser positivo")
	}
	if dto.Desconto < 0 || dto.Desconto > dto.Valor {
		return nil, apperr.Validacao("desconto fora da faixa [0, valor]")
	}
	if dto.DiaVencimento < 1 || dto.DiaVencimento > 31 {
		return nil, apperr.Validacao("dia de vencimento deve estar entre 1 e 31")
	}
	if err := dto.Periodicidade.Valida(); err != nil {
		return nil, err
	}
	if !dto.FimVigencia.After(dto.InicioVigencia) {
		return nil, apperr.Validacao("fim de vigência deve ser posterior ao início")
	}
	renovacao := dto.Renovacao
	if renovacao == "" {
		renovacao = RenovacaoManual
	}
	if renovacao != RenovacaoAutomatica && renovacao != RenovacaoManual {
		return nil, apperr.Validacao("política de renovação inválida: %q", string(renovacao))
	}
	moeda := dto.Moeda
	if moeda == "" {
		moeda = "BRL"
	}

	c := &Contrato{
		ClienteID:      dto.ClienteID,
		Tipo:           dto.Tipo,
		Status:         StatusAguardando,
		URLDocumento:   dto.URLDocumento,
		HashDocumento:  dto.HashDocumento,
		Valor:          dto.Valor,
		Moeda:          moeda,
		Desconto:       dto.Desconto,
		MultaAtraso:    dto.MultaAtraso,
		DiaVencimento:  dto.DiaVencimento,
		Periodicidade:  dto.Periodicidade,
		InicioVigencia: dto.InicioVigencia,
		FimVigencia:    dto.FimVigencia,
		Renovacao:      renovacao,
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
	hist := []*HistoricoContrato{
		entrada(c.ID, "status", "", string(StatusAguardando), autor, "contrato criado"),
	}
	if err := repo.RegistrarHistorico(hist); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	s.Log.Info("contrato criado",
		zap.Uint("contratoId", c.ID),
		zap.Uint("clienteId", c.ClienteID))
	return c, nil
}

// Assinar transiciona "aguardando" -> "assinado", conferindo o hash do
// documento armazenado.
func (s *Service) Assinar(id uint, assinatura, hashDocumento string, signatarioID uint) (*Contrato, error) {
	c, err := s.Repo.BuscarPorID(id)
	if err != nil {
		return nil, apperr.DeGorm(err, "contrato")
	}
	if c.Status != StatusAguardando {
		return nil, apperr.EstadoInvalido("contrato %d não pode ser assinado no estado %q", id, c.Status)
	}
	if c.HashDocumento != hashDocumento {
		return nil, apperr.Integridade("hash do documento diverge do armazenado para o contrato %d", id)
	}

	agora := time.Now()
	antigo := c.Status
	c.Status = StatusAssinado
	c.Assinatura = assinatura
	c.SignatarioID = signatarioID
	c.DataAssinatura = &agora

	if err := s.transicionar(c, antigo, signatarioID, "contrato assinado"); err != nil {
		return nil, err
	}
	return c, nil
}

// Liberar transiciona {"aguardando","assinado"} -> "liberado".
func (s *Service) Liberar(id, autor uint, motivo string) (*Contrato, error) {
	c, err := s.Repo.BuscarPorID(id)
	if err != nil {
		return nil, apperr.DeGorm(err, "contrato")
	}
	if !c.Status.PodeTransicionar(StatusLiberado) {
		return nil, apperr.EstadoInvalido("contrato %d não pode ser liberado no estado %q", id, c.Status)
	}

	antigo := c.Status
	c.Status = StatusLiberado
	if motivo == "" {
		motivo = "contrato liberado"
	}
	if err := s.transicionar(c, antigo, autor, motivo); err != nil {
		return nil, err
	}
	return c, nil
}

// transicionar persiste a mudança de estado junto com o histórico, em uma
// transação única.
func (s *Service) transicionar(c *Contrato, antigo StatusAssinatura, autor uint, motivo string) error {
	tx := s.Repo.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	repo := s.Repo.WithDB(tx)

	if err := repo.Salvar(c); err != nil {
		_ = tx.Rollback()
		return err
	}
	hist := []*HistoricoContrato{
		entrada(c.ID, "status", string(antigo), string(c.Status), autor, motivo),
	}
	if err := repo.RegistrarHistorico(hist); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	s.Log.Info("transição de contrato",
		zap.Uint("contratoId", c.ID),
		zap.String("de", string(antigo)),
		zap.String("para", string(c.Status)))
	return nil
}

// Excluir marca o contrato como excluído (exclusão lógica). Nunca cascateia
// para faturas ou parcelas já geradas.
func (s *Service) Excluir(id, autor uint, motivo string) error {
	c, err := s.Repo.BuscarPorID(id)
	if err != nil {
		return apperr.DeGorm(err, "contrato")
	}

	tx := s.Repo.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	repo := s.Repo.WithDB(tx)

	if err := repo.ExcluirLogicamente(c.ID); err != nil {
		_ = tx.Rollback()
		return err
	}
	hist := []*HistoricoContrato{
		entrada(c.ID, "deleted_at", "", time.Now().Format(time.RFC3339), autor, motivo),
	}
	if err := repo.RegistrarHistorico(hist); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	s.Log.Info("contrato excluído", zap.Uint("contratoId", c.ID), zap.Uint("autor", autor))
	return nil
}

// Renovar cria o contrato sucessor com a vigência deslocada pela duração do
// antecessor e os parâmetros de faturamento copiados. Só é permitido com
// política "automatica".
func (s *Service) Renovar(id, autor uint) (*Contrato, error) {
	c, err := s.Repo.BuscarPorID(id)
	if err != nil {
		return nil, apperr.DeGorm(err, "contrato")
	}
	if c.Renovacao != RenovacaoAutomatica {
		return nil, apperr.Validacao("contrato %d não tem renovação automática", id)
	}
	if c.SucessorID != nil {
		return nil, apperr.EstadoInvalido("contrato %d já foi renovado (sucessor %d)", id, *c.SucessorID)
	}

	dur := c.DuracaoVigencia()
	sucessor := &Contrato{
		ClienteID:      c.ClienteID,
		Tipo:           c.Tipo,
		Status:         StatusAguardando,
		URLDocumento:   c.URLDocumento,
		HashDocumento:  c.HashDocumento,
		Valor:          c.Valor,
		Moeda:          c.Moeda,
		Desconto:       c.Desconto,
		MultaAtraso:    c.MultaAtraso,
		DiaVencimento:  c.DiaVencimento,
		Periodicidade:  c.Periodicidade,
		InicioVigencia: c.InicioVigencia.Add(dur),
		FimVigencia:    c.FimVigencia.Add(dur),
		Renovacao:      c.Renovacao,
		AntecessorID:   &c.ID,
	}

	tx := s.Repo.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	repo := s.Repo.WithDB(tx)

	if err := repo.Criar(sucessor); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	c.SucessorID = &sucessor.ID
	if err := repo.Salvar(c); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	hist := []*HistoricoContrato{
		entrada(c.ID, "sucessor_id", "", fmt.Sprint(sucessor.ID), autor, "renovação automática"),
		entrada(sucessor.ID, "status", "", string(StatusAguardando), autor, "criado por renovação"),
	}
	if err := repo.RegistrarHistorico(hist); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	s.Log.Info("contrato renovado",
		zap.Uint("antecessor", c.ID),
		zap.Uint("sucessor", sucessor.ID))
	return sucessor, nil
}

// Atualizar aplica uma atualização parcial campo a campo, com uma linha de
// histórico por campo alterado.
func (s *Service) Atualizar(id uint, up AtualizacaoContrato, autor uint, motivo string) (*Contrato, error) {
	c, err := s.Repo.BuscarPorID(id)
	if err != nil {
		return nil, apperr.DeGorm(err, "contrato")
	}

	var hist []*HistoricoContrato
	registra := func(campo, antigo, novo string) {
		if antigo != novo {
			hist = append(hist, entrada(c.ID, campo, antigo, novo, autor, motivo))
		}
	}

	if up.Tipo != nil {
		registra("tipo", c.Tipo, *up.Tipo)
		c.Tipo = *up.Tipo
	}
	if up.Valor != nil {
		if *up.Valor <= 0 {
			return nil, apperr.Validacao("valor do contrato deve ser positivo")
		}
		registra("valor", fmt.Sprintf("%.2f", c.Valor), fmt.Sprintf("%.2f", *up.Valor))
		c.Valor = *up.Valor
	}
	if up.Desconto != nil {
		if *up.Desconto < 0 {
			return nil, apperr.Validacao("desconto não pode ser negativo")
		}
		registra("desconto", fmt.Sprintf("%.2f", c.Desconto), fmt.Sprintf("%.2f", *up.Desconto))
		c.Desconto = *up.Desconto
	}
	if up.MultaAtraso != nil {
		registra("multa_atraso", fmt.Sprintf("%.4f", c.MultaAtraso), fmt.Sprintf("%.4f", *up.MultaAtraso))
		c.MultaAtraso = *up.MultaAtraso
	}
	if up.DiaVencimento != nil {
		if *up.DiaVencimento < 1 || *up.DiaVencimento > 31 {
			return nil, apperr.Validacao("dia de vencimento deve estar entre 1 e 31")
		}
		registra("dia_vencimento", fmt.Sprint(c.DiaVencimento), fmt.Sprint(*up.DiaVencimento))
		c.DiaVencimento = *up.DiaVencimento
	}
	if up.Periodicidade != nil {
		if err := up.Periodicidade.Valida(); err != nil {
			return nil, err
		}
		registra("periodicidade", string(c.Periodicidade), string(*up.Periodicidade))
		c.Periodicidade = *up.Periodicidade
	}
	if up.FimVigencia != nil {
		if !up.FimVigencia.After(c.InicioVigencia) {
			return nil, apperr.Validacao("fim de vigência deve ser posterior ao início")
		}
		registra("fim_vigencia", c.FimVigencia.Format(time.RFC3339), up.FimVigencia.Format(time.RFC3339))
		c.FimVigencia = *up.FimVigencia
	}
	if up.Renovacao != nil {
		if *up.Renovacao != RenovacaoAutomatica && *up.Renovacao != RenovacaoManual {
			return nil, apperr.Validacao("política de renovação inválida: %q", string(*up.Renovacao))
		}
		registra("renovacao", string(c.Renovacao), string(*up.Renovacao))
		c.Renovacao = *up.Renovacao
	}
	if up.URLDocumento != nil {
		registra("url_documento", c.URLDocumento, *up.URLDocumento)
		c.URLDocumento = *up.URLDocumento
	}
	if up.HashDocumento != nil {
		registra("hash_documento", c.HashDocumento, *up.HashDocumento)
		c.HashDocumento = *up.HashDocumento
	}

	if len(hist) == 0 {
		return c, nil
	}

	tx := s.Repo.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	repo := s.Repo.WithDB(tx)

	if err := repo.Salvar(c); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := repo.RegistrarHistorico(hist); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return c, nil
}

// Historico devolve a trilha de auditoria completa, inclusive de contratos
// excluídos.
func (s *Service) Historico(id uint) ([]HistoricoContrato, error) {
	if _, err := s.Repo.BuscarInclusiveExcluidos(id); err != nil {
		return nil, apperr.DeGorm(err, "contrato")
	}
	return s.Repo.ListarHistorico(id)
}
