package contrato

import (
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/vencimento"
	"gorm.io/gorm"
)

// Contrato rege a cobrança recorrente de um cliente: assinatura, vigência,
// parâmetros de faturamento e encadeamento de renovação. A exclusão é sempre
// lógica (DeletedAt); contratos excluídos saem das consultas ativas mas
// preservam o histórico.
type Contrato struct {
	gorm.Model

	ClienteID uint `gorm:"not null;index" json:"clienteId"`

	Tipo   string           `gorm:"size:50;not null" json:"tipo"` // "Gestão", "Energia"...
	Status StatusAssinatura `gorm:"size:20;not null;default:'aguardando';index" json:"status"`

	// Documento e assinatura
	URLDocumento   string     `json:"urlDocumento"`
	HashDocumento  string     `gorm:"size:128" json:"hashDocumento"`
	Assinatura     string     `json:"-"` // blob da assinatura, não exposto
	SignatarioID   uint       `json:"signatarioId,omitempty"`
	DataAssinatura *time.Time `json:"dataAssinatura,omitempty"`

	// Parâmetros de faturamento
	Valor         float64                  `gorm:"not null" json:"valor"`
	Moeda         string                   `gorm:"size:3;not null;default:'BRL'" json:"moeda"`
	Desconto      float64                  `gorm:"not null;default:0" json:"desconto"`
	MultaAtraso   float64                  `gorm:"not null;default:0" json:"multaAtraso"` // fração (0-1)
	DiaVencimento int                      `gorm:"not null" json:"diaVencimento"`         // 1-31, limitado a 28 no cálculo
	Periodicidade vencimento.Periodicidade `gorm:"size:20;not null" json:"periodicidade"`

	InicioVigencia time.Time `gorm:"not null" json:"inicioVigencia"`
	FimVigencia    time.Time `gorm:"not null" json:"fimVigencia"`

	// Encadeamento de renovação
	Renovacao    PoliticaRenovacao `gorm:"size:20;not null;default:'manual'" json:"renovacao"`
	AntecessorID *uint             `gorm:"index" json:"antecessorId,omitempty"`
	SucessorID   *uint             `gorm:"index" json:"sucessorId,omitempty"`
}

// Migrate cria as tabelas de contrato e histórico.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Contrato{}, &HistoricoContrato{})
}

// DuracaoVigencia devolve a duração da vigência, usada no deslocamento da
// renovação.
func (c *Contrato) DuracaoVigencia() time.Duration {
	return c.FimVigencia.Sub(c.InicioVigencia)
}

// ValorFatura é o valor de cada fatura do contrato: valor menos desconto,
// nunca negativo.
func (c *Contrato) ValorFatura() float64 {
	v := c.Valor - c.Desconto
	if v < 0 {
		return 0
	}
	return v
}
