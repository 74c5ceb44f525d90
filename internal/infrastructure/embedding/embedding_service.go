package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/cfg"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/jitter"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/logger"
)

// EmbeddingService — клиент для взаимодействия с внешним сервисом эмбеддингов по HTTP
type EmbeddingService struct {
	httpClient *http.Client
	addr       string
	model      string
	apiKey     string
	maxRetries int
	logger     logger.Logger
}

func NewEmbeddingService(cfg *cfg.EmbeddingCfg, logger logger.Logger) *EmbeddingService {
	return &EmbeddingService{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		addr:       cfg.Addr,
		model:      cfg.Model,
		apiKey:     cfg.ApiKey,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// EmbedText вычисляет вектор для текста с retry-логикой и экспоненциальной задержкой
func (s *EmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	const (
		op         = "EmbeddingService.EmbedText"
		baseJitter = 500 * time.Millisecond
		maxJitter  = 10 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		vector, err := s.embedOnce(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if attempt == s.maxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(
			baseJitter,
			maxJitter,
			attempt,
			jitter.DefaultJitter,
		)

		s.logger.Warnf("embedding request failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrEmbedding, lastErr))
}

// embedOnce выполняет один HTTP-запрос к сервису эмбеддингов
func (s *EmbeddingService) embedOnce(ctx context.Context, text string) ([]float32, error) {
	const op = "EmbeddingService.embedOnce"

	body, err := json.Marshal(embeddingRequest{
		Model: s.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.addr+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, e.Wrap(op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyVector)
	}

	return parsed.Data[0].Embedding, nil
}
