package cliente

// ResumoClienteDTO resume o cadastro e a posição de cobrança de um cliente.
type ResumoClienteDTO struct {
	ID             uint    `json:"id"`
	Nome           string  `json:"nome"`
	CNPJ           string  `json:"cnpj"`
	Email          string  `json:"email"`
	Telefone       string  `json:"telefone"`
	PossuiPlano    bool    `json:"possuiPlano"`
	ValorMensal    float64 `json:"valorMensal"`
	DiaVencimento  int     `json:"diaVencimento"`
	FaturasAbertas int     `json:"faturasAbertas"`
	TotalEmAberto  float64 `json:"totalEmAberto"`
}
