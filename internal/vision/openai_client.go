package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dkarpov/runcatch/internal/capture"
)

const (
	openAIAPIURL = "https://api.openai.com/v1/chat/completions"
	openAIModel  = "gpt-4o-mini"
)

// OpenAIClassifier delegates frame classification to the OpenAI vision
// API. It owns no session state; every call is independent.
type OpenAIClassifier struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewOpenAIClassifier(apiKey string) *OpenAIClassifier {
	return &OpenAIClassifier{
		apiKey: apiKey,
		apiURL: openAIAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string              `json:"role"`
	Content []openAIContentPart `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

type frameVerdict struct {
	IsGameOver bool    `json:"isGameOver"`
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
}

const classifyPrompt = "You are looking at a single frame from a gameplay session.\n" +
	"The game-over screen has two visual cues:\n" +
	"1. A blue ribbon banner near the top showing the final score as a number\n" +
	"2. A green restart button in the middle of the screen\n" +
	"Decide whether this frame shows the game-over screen, and if it does, read the score from the ribbon.\n" +
	"Respond with ONLY a JSON object, no other text:\n" +
	"{\"isGameOver\": boolean, \"score\": integer (-1 if not readable), \"confidence\": number between 0 and 1}"

func (c *OpenAIClassifier) ClassifyFrame(ctx context.Context, frame *capture.Frame) (*Classification, error) {
	imageData, err := frame.EncodeJPEG()
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	imageBase64 := base64.StdEncoding.EncodeToString(imageData)

	reqBody := openAIRequest{
		Model: openAIModel,
		Messages: []openAIMessage{
			{
				Role: "user",
				Content: []openAIContentPart{
					{
						Type: "text",
						Text: classifyPrompt,
					},
					{
						Type: "image_url",
						ImageURL: &openAIImageURL{
							URL: fmt.Sprintf("data:image/jpeg;base64,%s", imageBase64),
						},
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("OpenAI API returned 429: %w", ErrRateLimited)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if openAIResp.Error != nil {
		if isQuotaError(openAIResp.Error.Type, openAIResp.Error.Code) {
			return nil, fmt.Errorf("OpenAI API error: %s: %w", openAIResp.Error.Message, ErrRateLimited)
		}
		return nil, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseVerdict(openAIResp.Choices[0].Message.Content)
}

func isQuotaError(errType, errCode string) bool {
	switch errType {
	case "insufficient_quota", "rate_limit_exceeded", "requests":
		return true
	}
	switch errCode {
	case "insufficient_quota", "rate_limit_exceeded":
		return true
	}
	return false
}

// parseVerdict extracts the required JSON shape from the model output,
// tolerating a markdown code fence around it.
func parseVerdict(content string) (*Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var verdict frameVerdict
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return nil, fmt.Errorf("failed to parse classifier verdict %q: %w", content, err)
	}

	result := &Classification{
		IsGameOver: verdict.IsGameOver,
		Confidence: verdict.Confidence,
	}
	if verdict.IsGameOver && verdict.Score >= 0 {
		score := verdict.Score
		result.Score = &score
	}
	return result, nil
}
