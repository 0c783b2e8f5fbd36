package contrato

import (
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/vencimento"
)

// CriarContratoDTO é o payload de criação de contrato.
type CriarContratoDTO struct {
	ClienteID     uint                     `json:"clienteId" validate:"required"`
	Tipo          string                   `json:"tipo" validate:"required"`
	Valor         float64                  `json:"valor" validate:"required,gt=0"`
	Moeda         string                   `json:"moeda"`
	Desconto      float64                  `json:"desconto" validate:"gte=0"`
	MultaAtraso   float64                  `json:"multaAtraso" validate:"gte=0,lte=1"`
	DiaVencimento int                      `json:"diaVencimento" validate:"required,gte=1,lte=31"`
	Periodicidade vencimento.Periodicidade `json:"periodicidade" validate:"required"`

	InicioVigencia time.Time `json:"inicioVigencia" validate:"required"`
	FimVigencia    time.Time `json:"fimVigencia" validate:"required"`

	Renovacao     PoliticaRenovacao `json:"renovacao"`
	URLDocumento  string            `json:"urlDocumento"`
	HashDocumento string            `json:"hashDocumento"`
}

// AssinarContratoDTO é o payload de assinatura.
type AssinarContratoDTO struct {
	Assinatura    string `json:"assinatura" validate:"required"`
	HashDocumento string `json:"hashDocumento" validate:"required"`
	SignatarioID  uint   `json:"signatarioId" validate:"required"`
}

// MotivoDTO acompanha liberação e exclusão.
type MotivoDTO struct {
	Motivo string `json:"motivo"`
}

// AtualizacaoContrato é a atualização parcial: só os campos presentes
// (não-nulos) são aplicados, um a um, cada um com sua linha de histórico.
type AtualizacaoContrato struct {
	Tipo          *string                   `json:"tipo,omitempty"`
	Valor         *float64                  `json:"valor,omitempty"`
	Desconto      *float64                  `json:"desconto,omitempty"`
	MultaAtraso   *float64                  `json:"multaAtraso,omitempty"`
	DiaVencimento *int                      `json:"diaVencimento,omitempty"`
	Periodicidade *vencimento.Periodicidade `json:"periodicidade,omitempty"`
	FimVigencia   *time.Time                `json:"fimVigencia,omitempty"`
	Renovacao     *PoliticaRenovacao        `json:"renovacao,omitempty"`
	URLDocumento  *string                   `json:"urlDocumento,omitempty"`
	HashDocumento *string                   `json:"hashDocumento,omitempty"`
}
