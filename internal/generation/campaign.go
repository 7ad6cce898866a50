package generation

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/emberfund/ember-api/internal/aiengine"
)

// CampaignInput is the creator-supplied seed for campaign content. It is
// validated before any network activity.
type CampaignInput struct {
	Name        string `json:"name"         validate:"required,min=3,max=120"`
	Summary     string `json:"summary"      validate:"required,min=20,max=2000"`
	Category    string `json:"category"     validate:"required,oneof=art comics crafts design fashion film food games music photography publishing technology community"`
	FundingGoal int64  `json:"funding_goal" validate:"required,gt=0"`
	Currency    string `json:"currency"     validate:"required,len=3,uppercase"`
	Audience    string `json:"audience"     validate:"omitempty,max=500"`
}

// CampaignContent is the generated draft. Every field carries validate
// tags; a response that misses any of them is a processing failure, never
// a partially-valid result.
type CampaignContent struct {
	Title      string       `json:"title"       validate:"required,max=140"`
	Tagline    string       `json:"tagline"     validate:"required,max=200"`
	Story      string       `json:"story"       validate:"required"`
	FundingUse []string     `json:"funding_use" validate:"required,min=1,dive,required"`
	Risks      string       `json:"risks"       validate:"required"`
	Rewards    []RewardTier `json:"rewards"     validate:"omitempty,dive"`
}

// RewardTier is one suggested pledge level.
type RewardTier struct {
	Title       string `json:"title"        validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Description string `json:"description"  validate:"required"`
}

const campaignSystem = "You are a crowdfunding copywriter. You draft honest, " +
	"concrete campaign pages. Respond only with JSON matching the requested schema."

// campaignSchema is the provider-side response shape; output validation on
// top of it is enforced locally by the engine.
var campaignSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"tagline":     {Type: genai.TypeString},
		"story":       {Type: genai.TypeString},
		"funding_use": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"risks":       {Type: genai.TypeString},
		"rewards": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":        {Type: genai.TypeString},
					"amount_cents": {Type: genai.TypeInteger},
					"description":  {Type: genai.TypeString},
				},
				Required: []string{"title", "amount_cents", "description"},
			},
		},
	},
	Required: []string{"title", "tagline", "story", "funding_use", "risks"},
}

// CampaignService drafts campaign pages. It holds its own engine so its
// retry policy can differ from the other services'.
type CampaignService struct {
	engine   *aiengine.Engine
	provider Provider
	model    string
	logger   *slog.Logger
}

func NewCampaignService(engine *aiengine.Engine, provider Provider, model string, logger *slog.Logger) *CampaignService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CampaignService{engine: engine, provider: provider, model: model, logger: logger}
}

// GenerateContent produces a schema-valid campaign draft or a classified
// error.
func (s *CampaignService) GenerateContent(ctx context.Context, in CampaignInput) (CampaignContent, aiengine.Metadata, error) {
	if !s.provider.IsConfigured() {
		return CampaignContent{}, aiengine.Metadata{}, errNotConfigured()
	}

	spec := aiengine.CallSpec{
		Operation:  "campaign.generate_content",
		Model:      s.model,
		System:     campaignSystem,
		Prompt:     campaignPrompt(in),
		Payload:    in,
		Schema:     campaignSchema,
		SchemaName: "campaign_content",
	}

	return aiengine.CallAI[CampaignContent](ctx, s.engine, s.provider, spec, aiengine.CallOptions{})
}

func campaignPrompt(in CampaignInput) string {
	prompt := fmt.Sprintf(
		"Draft a crowdfunding campaign page.\n\nProject name: %s\nCategory: %s\nFunding goal: %d %s\nSummary: %s\n",
		in.Name, in.Category, in.FundingGoal, in.Currency, in.Summary)
	if in.Audience != "" {
		prompt += fmt.Sprintf("Intended audience: %s\n", in.Audience)
	}
	return prompt
}
