package fatura

import (
	"time"

	"gorm.io/gorm"
)

// StatusFatura é o estado de cobrança da fatura.
type StatusFatura string

const (
	StatusPendente StatusFatura = "pendente"
	StatusPaga     StatusFatura = "pago"
	StatusAtrasada StatusFatura = "atrasado"
)

// Fatura é uma obrigação de cobrança de um único vencimento. O par
// (cliente, vencimento) é único: é a chave de idempotência da geração, e uma
// violação de unicidade na criação significa "já existe", não erro.
type Fatura struct {
	gorm.Model

	ClienteID  uint  `gorm:"not null;index;uniqueIndex:idx_fatura_cliente_vencimento" json:"clienteId"`
	ContratoID *uint `gorm:"index" json:"contratoId,omitempty"`

	Numero         string       `gorm:"size:64;not null;uniqueIndex" json:"numero"`
	DataEmissao    time.Time    `gorm:"not null" json:"dataEmissao"`
	DataVencimento time.Time    `gorm:"not null;uniqueIndex:idx_fatura_cliente_vencimento" json:"dataVencimento"`
	ValorTotal     float64      `gorm:"not null" json:"valorTotal"`
	Status         StatusFatura `gorm:"size:20;not null;default:'pendente';index" json:"status"`
	ValorPago      float64      `gorm:"not null;default:0" json:"valorPago"`
	DataPagamento  *time.Time   `json:"dataPagamento,omitempty"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Fatura{})
}
