package generation

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/emberfund/ember-api/internal/aiengine"
)

// ProfileInput seeds a service-provider profile for organizations that
// offer fulfillment or production services to campaigns.
type ProfileInput struct {
	DisplayName     string   `json:"display_name"     validate:"required,min=2,max=120"`
	Specialty       string   `json:"specialty"        validate:"required,min=3,max=200"`
	Region          string   `json:"region"           validate:"required,min=2,max=100"`
	YearsExperience int      `json:"years_experience" validate:"gte=0,lte=80"`
	Highlights      []string `json:"highlights"       validate:"omitempty,max=10,dive,max=300"`
}

// ProviderProfile is the generated public profile.
type ProviderProfile struct {
	Headline  string            `json:"headline"  validate:"required,max=160"`
	Bio       string            `json:"bio"       validate:"required"`
	Skills    []string          `json:"skills"    validate:"required,min=1,dive,required"`
	Offerings []ServiceOffering `json:"offerings" validate:"omitempty,dive"`
}

// ServiceOffering is one concrete service the provider advertises.
type ServiceOffering struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description" validate:"required"`
}

const profileSystem = "You write professional marketplace profiles for service " +
	"providers. Respond only with JSON matching the requested schema."

var profileSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"headline": {Type: genai.TypeString},
		"bio":      {Type: genai.TypeString},
		"skills":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"offerings": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":        {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
				},
				Required: []string{"name", "description"},
			},
		},
	},
	Required: []string{"headline", "bio", "skills"},
}

// ProfileService generates service-provider profiles.
type ProfileService struct {
	engine   *aiengine.Engine
	provider Provider
	model    string
	logger   *slog.Logger
}

func NewProfileService(engine *aiengine.Engine, provider Provider, model string, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{engine: engine, provider: provider, model: model, logger: logger}
}

// GenerateProfile drafts a profile from the structured input alone.
func (s *ProfileService) GenerateProfile(ctx context.Context, in ProfileInput) (ProviderProfile, aiengine.Metadata, error) {
	if !s.provider.IsConfigured() {
		return ProviderProfile{}, aiengine.Metadata{}, errNotConfigured()
	}

	return aiengine.CallAI[ProviderProfile](ctx, s.engine, s.provider, s.spec(in), aiengine.CallOptions{})
}

// GenerateProfileFromDocuments additionally attaches uploaded reference
// material (portfolios, capability statements) as file parts.
func (s *ProfileService) GenerateProfileFromDocuments(ctx context.Context, in ProfileInput, docs []aiengine.ContentPart) (ProviderProfile, aiengine.Metadata, error) {
	if !s.provider.IsConfigured() {
		return ProviderProfile{}, aiengine.Metadata{}, errNotConfigured()
	}

	return aiengine.CallAIWithFiles[ProviderProfile](ctx, s.engine, s.provider, s.spec(in), docs, aiengine.CallOptions{})
}

func (s *ProfileService) spec(in ProfileInput) aiengine.CallSpec {
	return aiengine.CallSpec{
		Operation:  "profile.generate",
		Model:      s.model,
		System:     profileSystem,
		Prompt:     profilePrompt(in),
		Payload:    in,
		Schema:     profileSchema,
		SchemaName: "provider_profile",
	}
}

func profilePrompt(in ProfileInput) string {
	prompt := fmt.Sprintf(
		"Write a marketplace profile.\n\nProvider: %s\nSpecialty: %s\nRegion: %s\nYears of experience: %d\n",
		in.DisplayName, in.Specialty, in.Region, in.YearsExperience)
	for _, h := range in.Highlights {
		prompt += fmt.Sprintf("- %s\n", h)
	}
	return prompt
}
