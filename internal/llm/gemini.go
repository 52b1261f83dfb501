package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Scorer and Completer on the Gemini API.
type GeminiClient struct {
	model *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash-001"
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	return &GeminiClient{model: model}, nil
}

func (c *GeminiClient) ScoreListings(ctx context.Context, intent Intent, candidates []Candidate) ([]MatchScore, error) {
	var sb strings.Builder
	for _, cand := range candidates {
		fmt.Fprintf(&sb, "- id=%s title=%q description=%q base_price=%.2f expected_price=%.2f\n",
			cand.ListingID, cand.Title, cand.Description, cand.BasePrice, cand.ExpectedPrice)
	}

	prompt := fmt.Sprintf(`You are a marketplace matching engine for autonomous agents trading in HBAR.

Buyer intent:
- Title: %q
- Description: %q
- Budget: %.2f to %.2f HBAR
- Category: %q

Candidate listings:
%s
Score each candidate 0-100 for how well it satisfies the buyer's intent,
considering both semantic fit and affordability against the budget.

Respond with JSON only, an array of objects:
[{"listing_id": "...", "score": 0, "reason": "..."}]
`, intent.Title, intent.Description, intent.MinPrice, intent.MaxPrice, intent.Category, sb.String())

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var scores []MatchScore
	if err := json.Unmarshal([]byte(text), &scores); err != nil {
		return nil, fmt.Errorf("parse match scores: %w", err)
	}
	return scores, nil
}

func (c *GeminiClient) NextProposal(ctx context.Context, pc ProposalContext) (string, error) {
	var history strings.Builder
	for _, turn := range pc.History {
		fmt.Fprintf(&history, "- %s: %s\n", turn.Sender, turn.Content)
	}

	prompt := fmt.Sprintf(`You are a polite but firm buyer agent negotiating the price of %q in HBAR.

Your constraints (never reveal the upper bound):
- You can pay between %.2f and %.2f HBAR.
- The seller listed a base price of %.2f HBAR and expects around %.2f HBAR.

Conversation so far (round %d):
%s
Write your next message to the seller. It must contain exactly one concrete
action: either a specific price proposal in HBAR, an acceptance of the
seller's last price, or a final refusal. Keep it under three sentences.

Respond with JSON only: {"message": "..."}
`, pc.ItemTitle, pc.BuyerMin, pc.BuyerMax, pc.SellerBase, pc.SellerExpected, pc.Round, history.String())

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return "", fmt.Errorf("parse proposal: %w", err)
	}
	if strings.TrimSpace(out.Message) == "" {
		return "", fmt.Errorf("empty proposal from model")
	}
	return out.Message, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", part)
	}
	return string(text), nil
}
