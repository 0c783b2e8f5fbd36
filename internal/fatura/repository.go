package fatura

import (
	"time"

	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de faturas.
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

// Criar persiste uma fatura nova.
func (r *Repository) Criar(f *Fatura) error {
	return r.DB.Create(f).Error
}

// FindByID busca uma fatura pelo seu ID.
func (r *Repository) FindByID(id uint) (*Fatura, error) {
	var f Fatura
	if err := r.DB.First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// Salvar atualiza todos os campos de uma fatura existente.
func (r *Repository) Salvar(f *Fatura) error {
	return r.DB.Save(f).Error
}

// ExistePara informa se o cliente já tem fatura para o vencimento dado.
func (r *Repository) ExistePara(clienteID uint, vencimento time.Time) (bool, error) {
	var n int64
	err := r.DB.Model(&Fatura{}).
		Where("cliente_id = ?", clienteID).
		Where("data_vencimento = ?", vencimento).
		Count(&n).Error
	return n > 0, err
}

// ListarPorCliente devolve as faturas de um cliente por vencimento.
func (r *Repository) ListarPorCliente(clienteID uint) ([]Fatura, error) {
	var faturas []Fatura
	err := r.DB.
		Where("cliente_id = ?", clienteID).
		Order("data_vencimento ASC").
		Find(&faturas).Error
	return faturas, err
}

// ListarPorStatus devolve as faturas em um dado status.
func (r *Repository) ListarPorStatus(status StatusFatura) ([]Fatura, error) {
	var faturas []Fatura
	err := r.DB.
		Where("status = ?", status).
		Order("data_vencimento ASC").
		Find(&faturas).Error
	return faturas, err
}

// MarcarAtrasadas muda para "atrasado" as faturas pendentes vencidas antes
// da data de referência. Devolve quantas mudaram.
func (r *Repository) MarcarAtrasadas(referencia time.Time) (int64, error) {
	res := r.DB.Model(&Fatura{}).
		Where("status = ?", StatusPendente).
		Where("data_vencimento < ?", referencia).
		Update("status", StatusAtrasada)
	return res.RowsAffected, res.Error
}
