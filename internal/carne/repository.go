// internal/carne/repository.go
package carne

import (
	"time"

	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de carnês e parcelas.
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

/* ============================== Carnê ============================== */

// Criar persiste um carnê novo.
func (r *Repository) Criar(c *Carne) error {
	return r.DB.Create(c).Error
}

// FindByID busca um carnê com suas parcelas ordenadas.
func (r *Repository) FindByID(id uint) (*Carne, error) {
	var c Carne
	err := r.DB.
		Preload("Parcelas", func(db *gorm.DB) *gorm.DB {
			return db.Order("numero ASC")
		}).
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Salvar atualiza todos os campos de um carnê existente.
func (r *Repository) Salvar(c *Carne) error {
	return r.DB.Save(c).Error
}

// ListarPorCliente devolve os carnês de um cliente.
func (r *Repository) ListarPorCliente(clienteID uint) ([]Carne, error) {
	var carnes []Carne
	err := r.DB.
		Preload("Parcelas").
		Where("cliente_id = ?", clienteID).
		Order("id ASC").
		Find(&carnes).Error
	return carnes, err
}

// ExcluirFisicamente apaga o carnê e suas parcelas de verdade (sem exclusão
// lógica). Usado só pela exclusão com fallback para cancelamento.
func (r *Repository) ExcluirFisicamente(id uint) error {
	if err := r.DB.Unscoped().Where("carne_id = ?", id).Delete(&Parcela{}).Error; err != nil {
		return err
	}
	res := r.DB.Unscoped().Delete(&Carne{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

/* ============================== Parcelas ============================== */

// CriarParcelasEmLote cria múltiplas parcelas de uma vez (ignora se vazio).
func (r *Repository) CriarParcelasEmLote(parcelas []*Parcela) error {
	if len(parcelas) == 0 {
		return nil
	}
	return r.DB.Create(parcelas).Error
}

// FindParcela busca uma única parcela pelo seu ID.
func (r *Repository) FindParcela(id uint) (*Parcela, error) {
	var p Parcela
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SalvarParcela atualiza todos os campos de uma parcela existente.
func (r *Repository) SalvarParcela(p *Parcela) error {
	return r.DB.Save(p).Error
}

// ListarParcelas devolve as parcelas de um carnê em ordem de sequência.
func (r *Repository) ListarParcelas(carneID uint) ([]Parcela, error) {
	var parcelas []Parcela
	err := r.DB.
		Where("carne_id = ?", carneID).
		Order("numero ASC").
		Find(&parcelas).Error
	return parcelas, err
}

// ContarNaoPagas conta as parcelas do carnê que ainda não estão "pago".
func (r *Repository) ContarNaoPagas(carneID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&Parcela{}).
		Where("carne_id = ?", carneID).
		Where("status <> ?", ParcelaPaga).
		Count(&n).Error
	return n, err
}

// MarcarStatusNaoPagas muda o status de todas as parcelas não pagas do carnê.
func (r *Repository) MarcarStatusNaoPagas(carneID uint, status StatusParcela) error {
	return r.DB.Model(&Parcela{}).
		Where("carne_id = ?", carneID).
		Where("status <> ?", ParcelaPaga).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}
