// internal/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Tipo classifica os erros de negócio devolvidos pelos serviços.
type Tipo string

const (
	TipoNaoEncontrado Tipo = "nao_encontrado"
	TipoValidacao     Tipo = "validacao"
	TipoEstado        Tipo = "estado_invalido"
	TipoIntegridade   Tipo = "integridade"
	TipoGateway       Tipo = "gateway"
)

// Erro carrega o tipo e a mensagem voltada ao cliente da API.
type Erro struct {
	Tipo     Tipo
	Mensagem string
	Causa    error
}

func (e *Erro) Error() string {
	if e.Causa != nil {
		return fmt.Sprintf("%s: %v", e.Mensagem, e.Causa)
	}
	return e.Mensagem
}

func (e *Erro) Unwrap() error { return e.Causa }

func novo(tipo Tipo, causa error, format string, args ...interface{}) *Erro {
	return &Erro{Tipo: tipo, Mensagem: fmt.Sprintf(format, args...), Causa: causa}
}

// NaoEncontrado indica que a entidade pedida não existe (ou foi excluída).
func NaoEncontrado(format string, args ...interface{}) *Erro {
	return novo(TipoNaoEncontrado, nil, format, args...)
}

// Validacao indica entrada malformada ou fora de faixa.
func Validacao(format string, args ...interface{}) *Erro {
	return novo(TipoValidacao, nil, format, args...)
}

// EstadoInvalido indica operação não permitida no estado atual da entidade.
func EstadoInvalido(format string, args ...interface{}) *Erro {
	return novo(TipoEstado, nil, format, args...)
}

// Integridade indica hash divergente ou violação de unicidade inesperada.
func Integridade(format string, args ...interface{}) *Erro {
	return novo(TipoIntegridade, nil, format, args...)
}

// Gateway embrulha uma falha do gateway de pagamento.
func Gateway(causa error, format string, args ...interface{}) *Erro {
	return novo(TipoGateway, causa, format, args...)
}

// EhTipo informa se err (ou qualquer erro na cadeia) tem o tipo dado.
func EhTipo(err error, tipo Tipo) bool {
	var ae *Erro
	if errors.As(err, &ae) {
		return ae.Tipo == tipo
	}
	return false
}

// DeGorm converte erros comuns do GORM para a taxonomia da aplicação.
func DeGorm(err error, entidade string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NaoEncontrado("%s não encontrado", entidade)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return novo(TipoIntegridade, err, "%s viola restrição de unicidade", entidade)
	default:
		return err
	}
}

// StatusHTTP mapeia um erro da taxonomia para o código HTTP da resposta.
func StatusHTTP(err error) int {
	var ae *Erro
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Tipo {
	case TipoNaoEncontrado:
		return http.StatusNotFound
	case TipoValidacao:
		return http.StatusBadRequest
	case TipoEstado:
		return http.StatusConflict
	case TipoIntegridade:
		return http.StatusConflict
	case TipoGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Responder escreve a mensagem do erro com o status adequado, no mesmo
// formato texto usado pelos handlers.
func Responder(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusHTTP(err))
}
