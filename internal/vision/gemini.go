package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"saldo/internal/core"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

const receiptPrompt = "You are a receipt and invoice parser for a personal finance app.\n\n" +
	"Task:\n" +
	"- Extract ALL purchases visible in the attached image.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a JSON array of objects.\n\n" +
	"Each object must have these fields:\n" +
	"- \"amount\": number (non-negative)\n" +
	"- \"note\": string (merchant or line-item description)\n" +
	"- \"type\": string, \"income\" or \"expense\"\n" +
	"- \"suggested_category\": string (free text, e.g. \"groceries\")\n" +
	"- \"date\": string, ISO format \"YYYY-MM-DD\", or null if not visible\n" +
	"- \"confidence\": number between 0 and 1\n" +
	"- \"location\": string or null\n\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n" +
	"Output must begin with \"[\" and end with \"]\".\n"

// GeminiExtractor implements Extractor on top of the Gemini vision API.
type GeminiExtractor struct {
	client *genai.Client
	model  string
	now    func() time.Time
}

// NewGeminiExtractor creates the extractor. Credentials come from the
// environment, the same way the rest of the Google stack is configured.
func NewGeminiExtractor(ctx context.Context, model string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiExtractor{client: client, model: model, now: time.Now}, nil
}

type extractedWire struct {
	Amount            float64 `json:"amount"`
	Note              string  `json:"note"`
	Type              string  `json:"type"`
	SuggestedCategory string  `json:"suggested_category"`
	Date              string  `json:"date"`
	Confidence        float64 `json:"confidence"`
	Location          string  `json:"location"`
}

// Extract sends the image to the model and parses its JSON reply into
// candidate transactions. Malformed items are clamped or zeroed rather
// than failing the batch: one bad line must not lose the receipt.
func (g *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) (Result, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return Result{Success: false, Message: "extraction service unavailable"}, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return Result{Success: false, Message: "empty response from model"}, nil
	}

	var items []extractedWire
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &items); err != nil {
		return Result{Success: false, Message: "model returned malformed output"}, fmt.Errorf("unmarshal model output: %w", err)
	}

	now := g.now()
	txs := make([]core.ExtractedTransaction, 0, len(items))
	for _, it := range items {
		txs = append(txs, normalize(it, now))
	}
	return Result{Success: true, Transactions: txs}, nil
}

// normalize clamps one wire item into a well-formed candidate.
func normalize(it extractedWire, now time.Time) core.ExtractedTransaction {
	amount := it.Amount
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	if amount < 0 {
		amount = -amount
	}

	kind := core.Expense
	if strings.EqualFold(it.Type, string(core.Income)) {
		kind = core.Income
	}

	date := now
	if it.Date != "" {
		if d, err := time.Parse("2006-01-02", it.Date); err == nil {
			date = d
		}
	}

	confidence := it.Confidence
	if math.IsNaN(confidence) || confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return core.ExtractedTransaction{
		ID:                uuid.NewString(),
		Amount:            core.FromUnits(amount),
		Note:              strings.TrimSpace(it.Note),
		Kind:              kind,
		SuggestedCategory: strings.TrimSpace(it.SuggestedCategory),
		Date:              date,
		Confidence:        confidence,
		Location:          strings.TrimSpace(it.Location),
	}
}

// cleanModelJSON strips Markdown fences and surrounding junk when the
// model ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
