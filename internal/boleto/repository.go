package boleto

import (
	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de boletos.
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

// Criar persiste um boleto novo.
func (r *Repository) Criar(b *Boleto) error {
	return r.DB.Create(b).Error
}

// FindByID busca um boleto pelo seu ID.
func (r *Repository) FindByID(id uint) (*Boleto, error) {
	var b Boleto
	if err := r.DB.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Salvar atualiza todos os campos de um boleto existente.
func (r *Repository) Salvar(b *Boleto) error {
	return r.DB.Save(b).Error
}

// ListarPorCliente devolve os boletos de um cliente.
func (r *Repository) ListarPorCliente(clienteID uint) ([]Boleto, error) {
	var boletos []Boleto
	err := r.DB.
		Where("cliente_id = ?", clienteID).
		Order("data_vencimento ASC").
		Find(&boletos).Error
	return boletos, err
}

// ListarPendentesComCobranca devolve os boletos "pendente" que têm cobrança
// externa, candidatos à conciliação.
func (r *Repository) ListarPendentesComCobranca() ([]Boleto, error) {
	var boletos []Boleto
	err := r.DB.
		Where("status = ?", StatusPendente).
		Where("cobranca_id IS NOT NULL").
		Order("id ASC").
		Find(&boletos).Error
	return boletos, err
}

// BuscarPorParcela devolve o boleto ativo de uma parcela, se houver.
func (r *Repository) BuscarPorParcela(parcelaID uint) (*Boleto, error) {
	var b Boleto
	err := r.DB.
		Where("parcela_id = ?", parcelaID).
		Where("ativo = ?", true).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BuscarPorFatura devolve o boleto ativo de uma fatura, se houver.
func (r *Repository) BuscarPorFatura(faturaID uint) (*Boleto, error) {
	var b Boleto
	err := r.DB.
		Where("fatura_id = ?", faturaID).
		Where("ativo = ?", true).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}
