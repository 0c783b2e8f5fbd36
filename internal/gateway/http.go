// internal/gateway/http.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NexumEnergia/api-cobranca/internal/apperr"
	"go.uber.org/zap"
)

// HTTPClient implementa Client sobre a API REST do gateway.
type HTTPClient struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewHTTPClient(cfg Config, log *zap.Logger) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = TimeoutPadrao
	}
	return &HTTPClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

func (c *HTTPClient) fazer(ctx context.Context, metodo, caminho string, corpo, resposta interface{}) error {
	var body *bytes.Buffer
	if corpo != nil {
		raw, err := json.Marshal(corpo)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, metodo, c.cfg.BaseURL+caminho, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("gateway indisponível",
			zap.String("metodo", metodo),
			zap.String("caminho", caminho),
			zap.Error(err))
		return apperr.Gateway(err, "falha na chamada ao gateway")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("gateway respondeu com erro",
			zap.String("metodo", metodo),
			zap.String("caminho", caminho),
			zap.Int("status", resp.StatusCode))
		return apperr.Gateway(fmt.Errorf("status %d", resp.StatusCode), "gateway recusou a chamada")
	}

	if resposta != nil {
		if err := json.NewDecoder(resp.Body).Decode(resposta); err != nil {
			return apperr.Gateway(err, "resposta do gateway ilegível")
		}
	}
	return nil
}

// CriarCobranca registra uma cobrança nova no gateway.
func (c *HTTPClient) CriarCobranca(ctx context.Context, nova NovaCobranca) (*Cobranca, error) {
	var cob Cobranca
	if err := c.fazer(ctx, http.MethodPost, "/cobrancas", nova, &cob); err != nil {
		return nil, err
	}
	return &cob, nil
}

// ConsultarCobranca busca o estado autoritativo de uma cobrança.
func (c *HTTPClient) ConsultarCobranca(ctx context.Context, id string) (*SituacaoCobranca, error) {
	var sit SituacaoCobranca
	if err := c.fazer(ctx, http.MethodGet, "/cobrancas/"+id, nil, &sit); err != nil {
		return nil, err
	}
	return &sit, nil
}

// CancelarCobranca pede o cancelamento de uma cobrança.
func (c *HTTPClient) CancelarCobranca(ctx context.Context, id string) (bool, error) {
	if err := c.fazer(ctx, http.MethodDelete, "/cobrancas/"+id, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}
