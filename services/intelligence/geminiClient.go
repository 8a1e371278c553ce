// File: services/intelligence/geminiClient.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"solobuddy/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemPrompt = `You help solo travelers find a tour guide.
Read the traveler's message and the conversation so far, then answer with
"response_text": a short markdown reply, and "mongo_filter": only the guide
attributes the traveler actually asked for. Leave every other attribute out.
Prices are per day in the platform currency.`

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient configures the model to always answer with JSON matching
// the guide filter schema.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = translationSchema()
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.SetTemperature(0.2)
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func (g *GeminiClient) Translate(ctx context.Context, history []models.AITurn, message string) (*models.AITranslation, error) {
	cs := g.model.StartChat()
	for _, turn := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return DecodeTranslation(sb.String())
}

// DecodeTranslation parses the model's JSON answer.
func DecodeTranslation(raw string) (*models.AITranslation, error) {
	var out models.AITranslation
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode gemini answer: %w", err)
	}
	return &out, nil
}

func enumSchema(values []string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Format: "enum", Enum: values}
}

func clause(operators []string, value *genai.Schema) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"operator": enumSchema(operators),
			"value":    value,
		},
		Required: []string{"operator", "value"},
	}
}

func listClause(description string, vocabulary []string) *genai.Schema {
	s := clause([]string{"$in", "$nin", "$all"}, &genai.Schema{Type: genai.TypeArray, Items: enumSchema(vocabulary)})
	s.Description = description
	return s
}

func rangeClause() *genai.Schema {
	return clause([]string{"$eq", "$ne", "$gt", "$gte", "$lt", "$lte"}, &genai.Schema{Type: genai.TypeNumber})
}

func translationSchema() *genai.Schema {
	text := func(description string) *genai.Schema {
		s := clause([]string{"$regex"}, &genai.Schema{Type: genai.TypeString})
		s.Description = description
		return s
	}
	experience := rangeClause()
	experience.Description = "years of guiding experience"

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"mongo_filter": {
				Type:        genai.TypeObject,
				Description: "tour guide search filter",
				Properties: map[string]*genai.Schema{
					"user.name":       text("guide name"),
					"user.country":    text("guide home country"),
					"location":        listClause("where the guide works", models.Locations),
					"languages":       listClause("languages the guide speaks", models.Languages),
					"ratingAvg":       {Type: genai.TypeArray, Description: "average rating from 1 to 5", Items: rangeClause()},
					"pricePerDay":     {Type: genai.TypeArray, Description: "price per day", Items: rangeClause()},
					"vehicle":         listClause("vehicle the guide uses", models.VehicleTypes),
					"experienceYears": experience,
					"specialties":     listClause("kinds of tours the guide runs", models.SpecialtyTypes),
					"favourites.name": listClause("guide hobbies", models.Favourites),
				},
			},
			"response_text": {
				Type:        genai.TypeString,
				Description: "markdown reply to the traveler",
			},
		},
		Required: []string{"response_text"},
	}
}
