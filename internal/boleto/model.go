package boleto

import (
	"time"

	"gorm.io/gorm"
)

// StatusBoleto é o estado local do documento de cobrança.
type StatusBoleto string

const (
	StatusPendente  StatusBoleto = "pendente"
	StatusPago      StatusBoleto = "pago"
	StatusCancelado StatusBoleto = "cancelado"
)

// Boleto é o documento de cobrança atrelado a uma fatura ou a uma parcela de
// carnê (nunca aos dois). Uma vez emitido, o boleto é cancelado, não
// excluído. Quando o gateway falha na emissão o boleto fica sem os campos
// externos e segue rastreável localmente (modo degradado).
type Boleto struct {
	gorm.Model

	ClienteID uint  `gorm:"not null;index" json:"clienteId"`
	FaturaID  *uint `gorm:"index" json:"faturaId,omitempty"`
	ParcelaID *uint `gorm:"index" json:"parcelaId,omitempty"`

	NumeroDocumento string       `gorm:"size:64;not null;uniqueIndex" json:"numeroDocumento"`
	Valor           float64      `gorm:"not null" json:"valor"`
	DataVencimento  time.Time    `gorm:"not null" json:"dataVencimento"`
	Status          StatusBoleto `gorm:"size:20;not null;default:'pendente';index" json:"status"`
	Ativo           bool         `gorm:"not null;default:true" json:"ativo"`

	// Espelho do gateway. CobrancaID nulo = emissão degradada, pendente de
	// nova tentativa.
	CobrancaID     *string `gorm:"size:64;uniqueIndex" json:"cobrancaId,omitempty"`
	StatusExterno  string  `gorm:"size:50" json:"statusExterno"`
	CodigoBarras   string  `gorm:"size:128" json:"codigoBarras"`
	LinhaDigitavel string  `gorm:"size:128" json:"linhaDigitavel"`
	URL            string  `json:"url"`
}

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Boleto{})
}

// mapearStatusExterno traduz o status do gateway para o status local.
// Status desconhecidos não mudam o estado local.
func mapearStatusExterno(externo string) (StatusBoleto, bool) {
	switch externo {
	case "paid":
		return StatusPago, true
	case "canceled":
		return StatusCancelado, true
	default:
		return "", false
	}
}
