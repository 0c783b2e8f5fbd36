// internal/carne/model.go
package carne

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// StatusCarne é o estado do plano de parcelamento.
type StatusCarne string

const (
	CarneAtivo      StatusCarne = "ativo"
	CarneCancelado  StatusCarne = "cancelado"
	CarneFinalizado StatusCarne = "finalizado"
)

// StatusParcela é o estado de uma parcela individual.
type StatusParcela string

const (
	ParcelaPendente  StatusParcela = "pendente"
	ParcelaParcial   StatusParcela = "parcial"
	ParcelaPaga      StatusParcela = "pago"
	ParcelaCancelada StatusParcela = "cancelado"
)

// Carne é o plano que divide um valor total em N parcelas com espaçamento
// fixo. As parcelas nascem todas juntas, na mesma transação do plano; nunca
// são geradas sob demanda.
type Carne struct {
	gorm.Model

	ClienteID    uint        `gorm:"not null;index" json:"clienteId"`
	ValorTotal   float64     `gorm:"not null" json:"valorTotal"`
	QtdParcelas  int         `gorm:"not null" json:"qtdParcelas"`
	ValorParcela float64     `gorm:"not null" json:"valorParcela"`
	Status       StatusCarne `gorm:"size:20;not null;default:'ativo';index" json:"status"`

	DataInicio         time.Time `gorm:"not null" json:"dataInicio"`
	PrimeiroVencimento time.Time `gorm:"not null" json:"primeiroVencimento"`
	IntervaloDias      int       `gorm:"not null" json:"intervaloDias"`

	Parcelas []Parcela `gorm:"foreignKey:CarneID;constraint:OnDelete:CASCADE" json:"parcelas"`
}

// Parcela é uma obrigação individual do carnê. Numero é a sequência 1..N,
// única dentro do plano.
type Parcela struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	CarneID uint `gorm:"not null;uniqueIndex:idx_parcela_carne_numero" json:"carneId"`
	Numero  int  `gorm:"not null;uniqueIndex:idx_parcela_carne_numero" json:"numero"`

	Valor          float64       `gorm:"not null" json:"valor"`
	DataVencimento time.Time     `gorm:"not null" json:"dataVencimento"`
	Status         StatusParcela `gorm:"size:20;not null;default:'pendente';index" json:"status"`
	ValorPago      float64       `gorm:"not null;default:0" json:"valorPago"`
	DataPagamento  *time.Time    `json:"dataPagamento,omitempty"`

	// Referência da cobrança no gateway, quando o boleto foi emitido.
	CobrancaID *string `gorm:"size:64" json:"cobrancaId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate cria as tabelas no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Carne{}, &Parcela{})
}

// dividirValor reparte o total em n parcelas de duas casas decimais; a última
// absorve a sobra do arredondamento para a soma fechar com o total.
func dividirValor(total float64, n int) (porParcela, ultima float64) {
	porParcela = math.Round(total/float64(n)*100) / 100
	ultima = math.Round((total-porParcela*float64(n-1))*100) / 100
	return porParcela, ultima
}
