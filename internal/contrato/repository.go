package contrato

import (
	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de contratos e seu histórico.
type Repository struct {
	DB *gorm.DB
}

// NewRepository instancia um novo repositório.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB retorna uma cópia do repo usando um *gorm.DB específico (ex.: tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

// Criar persiste um contrato novo.
func (r *Repository) Criar(c *Contrato) error {
	return r.DB.Create(c).Error
}

// BuscarPorID busca um contrato ativo (exclusão lógica filtrada pelo GORM).
func (r *Repository) BuscarPorID(id uint) (*Contrato, error) {
	var c Contrato
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// BuscarInclusiveExcluidos busca um contrato ignorando a exclusão lógica.
func (r *Repository) BuscarInclusiveExcluidos(id uint) (*Contrato, error) {
	var c Contrato
	if err := r.DB.Unscoped().First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListarAtivos devolve os contratos não excluídos.
func (r *Repository) ListarAtivos() ([]Contrato, error) {
	var contratos []Contrato
	err := r.DB.Order("id ASC").Find(&contratos).Error
	return contratos, err
}

// ListarPorCliente devolve os contratos ativos de um cliente.
func (r *Repository) ListarPorCliente(clienteID uint) ([]Contrato, error) {
	var contratos []Contrato
	err := r.DB.Where("cliente_id = ?", clienteID).Order("id ASC").Find(&contratos).Error
	return contratos, err
}

// Salvar atualiza todos os campos de um contrato existente.
func (r *Repository) Salvar(c *Contrato) error {
	return r.DB.Save(c).Error
}

// ExcluirLogicamente marca o contrato como excluído (DeletedAt).
func (r *Repository) ExcluirLogicamente(id uint) error {
	res := r.DB.Delete(&Contrato{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

/* ============================== Histórico ============================== */

// RegistrarHistorico grava entradas de auditoria (append-only).
func (r *Repository) RegistrarHistorico(entradas []*HistoricoContrato) error {
	if len(entradas) == 0 {
		return nil
	}
	return r.DB.Create(entradas).Error
}

// ListarHistorico devolve todas as entradas de um contrato, inclusive de
// contratos já excluídos, em ordem cronológica.
func (r *Repository) ListarHistorico(contratoID uint) ([]HistoricoContrato, error) {
	var entradas []HistoricoContrato
	err := r.DB.
		Where("contrato_id = ?", contratoID).
		Order("created_at ASC, id ASC").
		Find(&entradas).Error
	return entradas, err
}
