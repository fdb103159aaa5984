package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"saveeat/internal/caching"
	"saveeat/internal/config"
	"saveeat/internal/models"
	"saveeat/internal/viewengine"
)

const maxPromptIngredients = 30

// LLMClient produces a text completion for a prompt
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

// NewGeminiClient returns nil, nil when no API key is configured
func NewGeminiClient(ctx context.Context, cfg config.RecipesConfig, httpClient *http.Client) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &geminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
	}, nil
}

func (g *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:      &temperature,
			MaxOutputTokens:  g.maxTokens,
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

type RecipeService interface {
	// Suggest proposes a dish. A nil items slice means the user's current pantry.
	Suggest(ctx context.Context, userID uuid.UUID, items []models.RecipeIngredient, now time.Time) ([]models.MenuSuggestion, error)
}

type recipeService struct {
	llm         LLMClient
	pantry      PantryService
	engine      *viewengine.Engine
	cache       caching.CacheService
	hourlyLimit int
	logger      *zap.Logger
}

func NewRecipeService(llm LLMClient, pantry PantryService, engine *viewengine.Engine, cache caching.CacheService,
	hourlyLimit int, logger *zap.Logger) RecipeService {
	return &recipeService{
		llm:         llm,
		pantry:      pantry,
		engine:      engine,
		cache:       cache,
		hourlyLimit: hourlyLimit,
		logger:      logger,
	}
}

func (s *recipeService) Suggest(ctx context.Context, userID uuid.UUID, items []models.RecipeIngredient, now time.Time) ([]models.MenuSuggestion, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: recipe suggestions are not configured", ErrUnavailable)
	}

	if items == nil {
		var err error
		if items, err = s.pantryIngredients(ctx, userID, now); err != nil {
			return nil, err
		}
	}
	names := ingredientNames(items)
	if len(names) == 0 {
		return nil, invalid("items", "at least one ingredient is required")
	}

	if s.cache != nil && s.hourlyLimit > 0 {
		limited, err := s.cache.IsRateLimited(ctx, "recipes:"+userID.String(), s.hourlyLimit, time.Hour)
		if err != nil {
			s.logger.Warn("rate limit check failed", zap.Stringer("user_id", userID), zap.Error(err))
		} else if limited {
			return nil, ErrRateLimited
		}
	}

	reply, err := s.llm.Generate(ctx, buildRecipePrompt(names))
	if err != nil {
		s.logger.Error("recipe generation failed", zap.Stringer("user_id", userID), zap.Error(err))
		return nil, err
	}

	recipe, err := parseGeneratedRecipe(reply)
	if err != nil {
		s.logger.Error("failed to parse recipe reply", zap.String("reply", reply), zap.Error(err))
		return nil, err
	}

	return []models.MenuSuggestion{{
		Title:       recipe.Title,
		URL:         "",
		Source:      "AI",
		Description: recipe.Description,
		MainReason:  "Suggested from the ingredients you have on hand",
		Missing:     []string{},
		Sides:       nonNil(recipe.Sides),
		Ingredients: nonNil(recipe.Ingredients),
		Steps:       nonNil(recipe.Steps),
	}}, nil
}

// pantryIngredients offers the items that are still good, nearest expiry first
func (s *recipeService) pantryIngredients(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.RecipeIngredient, error) {
	all, err := s.pantry.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := viewengine.DefaultQuery()
	q.IncludeUnset = true

	var out []models.RecipeIngredient
	for _, it := range s.engine.FilterAndSort(all, q, now) {
		qty := it.Quantity
		out = append(out, models.RecipeIngredient{Name: it.Name, Quantity: &qty})
	}
	return out, nil
}

func ingredientNames(items []models.RecipeIngredient) []string {
	var names []string
	for _, it := range items {
		if n := strings.TrimSpace(it.Name); n != "" {
			names = append(names, n)
		}
		if len(names) == maxPromptIngredients {
			break
		}
	}
	return names
}

func buildRecipePrompt(names []string) string {
	var b strings.Builder
	b.WriteString("You are an experienced home cook. Suggest one home-style dish that uses these ingredients: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(".\n\nReply with JSON only, in this shape:\n")
	b.WriteString(`{"title":"...","description":"...","ingredients":["name: amount", ...],"steps":["...", ...],"sides":["...", ...]}`)
	b.WriteString("\n\nRequirements:\n")
	b.WriteString("- Always include title, description, ingredients and steps.\n")
	b.WriteString("- Every ingredient entry is \"name: amount\" with a concrete amount.\n")
	b.WriteString("- Steps are concrete enough to reproduce at home, one step per array entry.\n")
	b.WriteString("- sides is optional and lists simple side dishes.\n")
	return b.String()
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

var errUnparsableReply = errors.New("model reply is not a recipe")

// parseGeneratedRecipe accepts a bare JSON document or the outermost {...} block of a chattier reply
func parseGeneratedRecipe(reply string) (*models.GeneratedRecipe, error) {
	var recipe models.GeneratedRecipe
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &recipe); err != nil {
		block := jsonObjectPattern.FindString(reply)
		if block == "" {
			return nil, errUnparsableReply
		}
		if err := json.Unmarshal([]byte(block), &recipe); err != nil {
			return nil, fmt.Errorf("%w: %v", errUnparsableReply, err)
		}
	}
	if strings.TrimSpace(recipe.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", errUnparsableReply)
	}
	return &recipe, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
