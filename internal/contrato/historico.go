package contrato

import (
	"time"
)

// HistoricoContrato é uma linha imutável de auditoria: cada mutação de
// contrato grava uma entrada por campo alterado, na mesma transação da
// mudança. Não há update nem delete nesta tabela.
type HistoricoContrato struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ContratoID  uint      `gorm:"not null;index" json:"contratoId"`
	Campo       string    `gorm:"size:100;not null" json:"campo"`
	ValorAntigo string    `json:"valorAntigo"`
	ValorNovo   string    `json:"valorNovo"`
	Autor       uint      `gorm:"not null" json:"autor"`
	Motivo      string    `gorm:"size:255" json:"motivo"`
	CreatedAt   time.Time `json:"createdAt"`
}
