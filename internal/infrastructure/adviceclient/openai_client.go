package adviceclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxSummarizedHoldings caps how many holdings are described in the prompt.
const maxSummarizedHoldings = 10

const advisorSystemPrompt = `You are a crypto portfolio advisor. You receive a snapshot of a wallet's holdings with USD values, percentages, risk categories, and a computed risk level. Respond with:
1. A one-paragraph risk assessment of the current allocation.
2. A concrete rebalancing suggestion with target percentage ranges.
3. Two or three short action items.
Be specific to the numbers provided. Do not promise returns. Plain text only, no markdown.`

// Client generates advice through an OpenAI-compatible chat-completions
// endpoint. Implements port.AdviceGenerator.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	logger     *zap.Logger
}

var _ port.AdviceGenerator = (*Client)(nil)

// NewClient creates an advice client. baseURL points at the API root, e.g.
// "https://api.openai.com/v1" or an OpenRouter-compatible equivalent.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &fasthttp.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		timeout:    timeout,
		logger:     logger.Named("AdviceClient"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateAdvice submits the analysis summary to the model and returns its
// text verbatim. Any transport, status, or decoding problem is returned as an
// error; the caller is expected to fall back locally.
func (c *Client) GenerateAdvice(ctx context.Context, analysis entity.PortfolioAnalysis, chainLabel string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: advisorSystemPrompt},
			{Role: "user", Content: summarizeAnalysis(analysis, chainLabel)},
		},
		Temperature: 0.4,
		MaxTokens:   600,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal advice request: %w", err)
	}

	requestURL := c.baseURL + "/chat/completions"

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		err = c.httpClient.DoDeadline(req, resp, deadline)
	} else {
		err = c.httpClient.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		return "", fmt.Errorf("advice request to %s failed: %w", requestURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("Advice API returned non-OK status",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return "", fmt.Errorf("advice API returned status %d", resp.StatusCode())
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal advice response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("advice API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("advice response contained no choices")
	}

	advice := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if advice == "" {
		return "", fmt.Errorf("advice response was empty")
	}
	return advice, nil
}

// summarizeAnalysis renders the metrics and the top holdings as the user
// message.
func summarizeAnalysis(analysis entity.PortfolioAnalysis, chainLabel string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Wallet portfolio on %s.\n", chainLabel)
	fmt.Fprintf(&b, "Total value: $%.2f\n", analysis.TotalValueUSD)
	fmt.Fprintf(&b, "Risk level: %s\n", analysis.RiskLevel)
	fmt.Fprintf(&b, "Stablecoin allocation: %.1f%%\n", analysis.StablecoinPercentage)
	fmt.Fprintf(&b, "Volatile allocation: %.1f%%\n", analysis.VolatilePercentage)
	fmt.Fprintf(&b, "Concentration risk: %t\n\n", analysis.ConcentrationRisk)

	b.WriteString("Holdings (largest first):\n")
	for i, h := range analysis.Holdings {
		if i >= maxSummarizedHoldings {
			fmt.Fprintf(&b, "... and %d smaller holdings\n", len(analysis.Holdings)-maxSummarizedHoldings)
			break
		}
		fmt.Fprintf(&b, "- %s: %s (%.2f USD, %.1f%%, %s)\n",
			h.Symbol, h.Balance, h.ValueUSD, h.Percentage, h.Category)
	}

	return b.String()
}
