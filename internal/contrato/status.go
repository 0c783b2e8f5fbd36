package contrato

// StatusAssinatura é o estado do contrato no ciclo de assinatura. A exclusão
// lógica é um flag ortogonal (DeletedAt), não um quarto estado.
type StatusAssinatura string

const (
	StatusAguardando StatusAssinatura = "aguardando"
	StatusAssinado   StatusAssinatura = "assinado"
	StatusLiberado   StatusAssinatura = "liberado"
)

// Transições permitidas. "liberado" é terminal.
var transicoes = map[StatusAssinatura]map[StatusAssinatura]bool{
	StatusAguardando: {StatusAssinado: true, StatusLiberado: true},
	StatusAssinado:   {StatusLiberado: true},
	StatusLiberado:   {},
}

// PodeTransicionar informa se a mudança de estado é permitida.
func (s StatusAssinatura) PodeTransicionar(destino StatusAssinatura) bool {
	return transicoes[s][destino]
}

// PoliticaRenovacao controla se o contrato pode ser renovado em cadeia.
type PoliticaRenovacao string

const (
	RenovacaoAutomatica PoliticaRenovacao = "automatica"
	RenovacaoManual     PoliticaRenovacao = "manual"
)
