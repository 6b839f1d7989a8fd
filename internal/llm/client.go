package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultRetryCount  = 2
	defaultTemperature = 0.7
)

var ErrEmptyCompletion = errors.New("empty completion")

type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

func NewClient(options Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryCount := options.RetryCount
	if retryCount < 0 {
		retryCount = 0
	} else if retryCount == 0 {
		retryCount = defaultRetryCount
	}
	retryWait := options.RetryWait
	if retryWait <= 0 {
		retryWait = 500 * time.Millisecond
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(options.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(4 * retryWait).
		AddRetryCondition(func(response *resty.Response, err error) bool {
			return response != nil && response.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if options.APIKey != "" {
		httpClient.SetAuthToken(options.APIKey)
	}

	return &Client{
		httpClient: httpClient,
		model:      options.Model,
		logger:     logger.Named("llm"),
	}
}

// Complete sends a system and a user message and returns the first choice.
func (client *Client) Complete(ctx context.Context, system string, prompt string) (string, error) {
	request := chatRequest{
		Model: client.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: defaultTemperature,
	}

	started := time.Now()
	var (
		result  chatResponse
		failure errorResponse
	)
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&result).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil {
		client.logger.Error("chat completion call failed", zap.Error(err))
		return "", fmt.Errorf("call chat completions: %w", err)
	}
	if response.IsError() {
		client.logger.Error("chat completion returned error",
			zap.Int("status_code", response.StatusCode()),
			zap.String("message", failure.Error.Message),
		)
		if failure.Error.Message != "" {
			return "", fmt.Errorf("chat completions status %d: %s", response.StatusCode(), failure.Error.Message)
		}
		return "", fmt.Errorf("chat completions status %d", response.StatusCode())
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}

	client.logger.Info("chat completion finished",
		zap.String("model", client.model),
		zap.Duration("duration", time.Since(started)),
	)
	return result.Choices[0].Message.Content, nil
}
