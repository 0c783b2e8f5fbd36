package cliente

import (
	"gorm.io/gorm"
)

// Cliente é o cadastro faturável: dados cadastrais usados na emissão de
// boletos e os parâmetros de plano usados pela geração mensal de faturas.
type Cliente struct {
	gorm.Model
	Nome     string `json:"nome"`
	CNPJ     string `json:"cnpj" gorm:"unique"`
	Email    string `json:"email" gorm:"unique"`
	Telefone string `json:"telefone"`
	Senha    string `json:"-"`
	IsAdmin  bool   `json:"-"`

	// Parâmetros de cobrança recorrente avulsa (sem contrato).
	PossuiPlano   bool    `json:"possuiPlano"`
	ValorMensal   float64 `json:"valorMensal"`
	DiaVencimento int     `json:"diaVencimento"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Cliente{})
}

// ElegivelFaturamento informa se o cliente entra na geração mensal em lote.
func (c *Cliente) ElegivelFaturamento() bool {
	return c.PossuiPlano && c.ValorMensal > 0 && c.DiaVencimento > 0
}
