// internal/vencimento/calculador.go
package vencimento

import (
	"time"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
)

// Periodicidade define o espaçamento entre vencimentos de um contrato.
type Periodicidade string

const (
	Mensal     Periodicidade = "mensal"
	Bimestral  Periodicidade = "bimestral"
	Trimestral Periodicidade = "trimestral"
	Semestral  Periodicidade = "semestral"
	Anual      Periodicidade = "anual"
)

// Passo em dias corridos de cada periodicidade. O avanço é aditivo, não
// calendário: 30 dias de "mensal" derivam levemente ao longo de vigências
// longas, comportamento assumido do sistema de origem.
var passoDias = map[Periodicidade]int{
	Mensal:     30,
	Bimestral:  60,
	Trimestral: 90,
	Semestral:  180,
	Anual:      365,
}

// MaxOcorrenciasPadrao limita a janela de geração antecipada de faturas.
const MaxOcorrenciasPadrao = 12

// Valida retorna erro de validação se a periodicidade não é conhecida.
func (p Periodicidade) Valida() error {
	if _, ok := passoDias[p]; !ok {
		return apperr.Validacao("periodicidade inválida: %q", string(p))
	}
	return nil
}

// PassoDias devolve o passo em dias da periodicidade (0 se desconhecida).
func (p Periodicidade) PassoDias() int {
	return passoDias[p]
}

// ClampDia limita o dia de vencimento a 28 para que toda data âncora exista
// em qualquer mês.
func ClampDia(dia int) int {
	if dia > 28 {
		return 28
	}
	if dia < 1 {
		return 1
	}
	return dia
}

// CalcularVencimentos deriva a sequência de vencimentos de um contrato.
//
// A âncora é a data de início com o dia trocado pelo dia de vencimento
// (limitado a 28); se cair antes do início, avança um passo. Cada vencimento
// seguinte soma o passo da periodicidade. Para quando a data ultrapassa o fim
// da vigência ou atinge maxOcorrencias. Uma sequência vazia é um resultado
// válido, nunca um erro.
func CalcularVencimentos(inicio time.Time, diaVencimento int, p Periodicidade, fimVigencia time.Time, maxOcorrencias int) []time.Time {
	passo, ok := passoDias[p]
	if !ok {
		return nil
	}
	if maxOcorrencias <= 0 {
		maxOcorrencias = MaxOcorrenciasPadrao
	}

	dia := ClampDia(diaVencimento)
	inicioDia := time.Date(inicio.Year(), inicio.Month(), inicio.Day(), 0, 0, 0, 0, inicio.Location())
	atual := time.Date(inicio.Year(), inicio.Month(), dia, 0, 0, 0, 0, inicio.Location())
	if atual.Before(inicioDia) {
		atual = atual.AddDate(0, 0, passo)
	}

	var datas []time.Time
	for len(datas) < maxOcorrencias && !atual.After(fimVigencia) {
		if len(datas) == 0 || atual.After(datas[len(datas)-1]) {
			datas = append(datas, atual)
		}
		atual = atual.AddDate(0, 0, passo)
	}
	return datas
}

// VencimentoDoPeriodo calcula o vencimento de um cliente para um mês/ano de
// competência, usado pela geração em lote de faturas.
func VencimentoDoPeriodo(mes time.Month, ano int, diaVencimento int) time.Time {
	return time.Date(ano, mes, ClampDia(diaVencimento), 0, 0, 0, 0, time.UTC)
}
