// internal/gateway/client.go
package gateway

import (
	"context"
	"time"
)

// Config reúne os parâmetros do gateway de pagamento. É passada explícita ao
// cliente na construção; nenhuma configuração global mutável.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// TimeoutPadrao limita cada chamada ao gateway; as chamadas são I/O
// bloqueante e nunca acontecem dentro de uma transação aberta.
const TimeoutPadrao = 12 * time.Second

// Pagador identifica quem paga a cobrança.
type Pagador struct {
	Nome  string `json:"nome"`
	CNPJ  string `json:"cnpj"`
	Email string `json:"email"`
}

// NovaCobranca é o pedido de criação de cobrança.
type NovaCobranca struct {
	Pagador    Pagador   `json:"pagador"`
	Valor      float64   `json:"valor"`
	Vencimento time.Time `json:"vencimento"`
	Referencia string    `json:"referencia"`
	Multa      float64   `json:"multa"`
	Juros      float64   `json:"juros"`
}

// Cobranca é a cobrança registrada no gateway.
type Cobranca struct {
	ID             string `json:"id"`
	CodigoBarras   string `json:"codigoBarras"`
	LinhaDigitavel string `json:"linhaDigitavel"`
	URL            string `json:"url"`
}

// SituacaoCobranca é o estado autoritativo da cobrança no gateway.
type SituacaoCobranca struct {
	Status     string    `json:"status"` // "aberto", "paid", "canceled"...
	Valor      float64   `json:"valor"`
	Vencimento time.Time `json:"vencimento"`
}

// Client é o contrato consumido pelos serviços de boleto e carnê.
type Client interface {
	CriarCobranca(ctx context.Context, nova NovaCobranca) (*Cobranca, error)
	ConsultarCobranca(ctx context.Context, id string) (*SituacaoCobranca, error)
	CancelarCobranca(ctx context.Context, id string) (bool, error)
}
