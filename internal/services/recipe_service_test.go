package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"saveeat/internal/caching"
	"saveeat/internal/models"
	"saveeat/internal/viewengine"
	"saveeat/testhelpers"
)

const omeletteReply = `{"title":"Omelette","description":"Fluffy eggs","ingredients":["egg: 2","milk: 30ml"],"steps":["Beat","Cook"]}`

func newRecipeTestService(llm LLMClient, pantry PantryService, cache caching.CacheService) RecipeService {
	return NewRecipeService(llm, pantry, viewengine.NewEngine("en"), cache, 5, zap.NewNop())
}

func TestRecipeSuggest_FromGivenItems(t *testing.T) {
	llm := new(MockLLMClient)
	cache := new(MockCacheService)
	userID := uuid.New()
	ctx := context.Background()

	cache.On("IsRateLimited", ctx, "recipes:"+userID.String(), 5, time.Hour).Return(false, nil).Once()
	llm.On("Generate", ctx, mock.MatchedBy(func(prompt string) bool {
		return assert.Contains(t, prompt, "egg, milk")
	})).Return(omeletteReply, nil).Once()

	svc := newRecipeTestService(llm, nil, cache)
	suggestions, err := svc.Suggest(ctx, userID, []models.RecipeIngredient{{Name: "egg"}, {Name: " "}, {Name: "milk"}}, time.Now())
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Equal(t, "Omelette", s.Title)
	assert.Equal(t, "AI", s.Source)
	assert.Equal(t, "", s.URL)
	assert.Equal(t, []string{}, s.Missing)
	assert.Equal(t, []string{}, s.Sides)
	assert.Equal(t, []string{"egg: 2", "milk: 30ml"}, s.Ingredients)
	llm.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRecipeSuggest_DefaultsToPantry(t *testing.T) {
	llm := new(MockLLMClient)
	cache := new(MockCacheService)
	pantry := new(MockPantryService)
	userID := uuid.New()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	pantry.On("Items", ctx, userID).Return([]*models.PantryItem{
		testhelpers.NewPantryItem(userID, "Spoiled fish", "2024-02-01"),
		testhelpers.NewPantryItem(userID, "Tofu", "2024-03-02"),
		testhelpers.NewPantryItem(userID, "Rice", ""),
	}, nil).Once()
	cache.On("IsRateLimited", ctx, mock.Anything, 5, time.Hour).Return(false, nil).Once()

	var prompt string
	llm.On("Generate", ctx, mock.Anything).Run(func(args mock.Arguments) {
		prompt = args.String(1)
	}).Return(omeletteReply, nil).Once()

	_, err := newRecipeTestService(llm, pantry, cache).Suggest(ctx, userID, nil, now)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Tofu, Rice")
	assert.NotContains(t, prompt, "Spoiled fish")
}

func TestRecipeSuggest_RateLimited(t *testing.T) {
	llm := new(MockLLMClient)
	cache := new(MockCacheService)
	cache.On("IsRateLimited", mock.Anything, mock.Anything, 5, time.Hour).Return(true, nil).Once()

	_, err := newRecipeTestService(llm, nil, cache).Suggest(context.Background(), uuid.New(),
		[]models.RecipeIngredient{{Name: "egg"}}, time.Now())
	assert.ErrorIs(t, err, ErrRateLimited)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRecipeSuggest_NotConfigured(t *testing.T) {
	_, err := newRecipeTestService(nil, nil, nil).Suggest(context.Background(), uuid.New(),
		[]models.RecipeIngredient{{Name: "egg"}}, time.Now())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRecipeSuggest_NoIngredients(t *testing.T) {
	llm := new(MockLLMClient)
	_, err := newRecipeTestService(llm, nil, nil).Suggest(context.Background(), uuid.New(),
		[]models.RecipeIngredient{}, time.Now())
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRecipeSuggest_LLMError(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota")).Once()

	_, err := newRecipeTestService(llm, nil, nil).Suggest(context.Background(), uuid.New(),
		[]models.RecipeIngredient{{Name: "egg"}}, time.Now())
	assert.ErrorContains(t, err, "quota")
}

func TestParseGeneratedRecipe(t *testing.T) {
	recipe, err := parseGeneratedRecipe(omeletteReply)
	require.NoError(t, err)
	assert.Equal(t, "Omelette", recipe.Title)

	recipe, err = parseGeneratedRecipe("Sure! Here it is:\n```json\n" + omeletteReply + "\n```\nEnjoy.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Beat", "Cook"}, recipe.Steps)

	_, err = parseGeneratedRecipe("I cannot help with that.")
	assert.ErrorIs(t, err, errUnparsableReply)

	_, err = parseGeneratedRecipe(`{"description":"no title"}`)
	assert.ErrorIs(t, err, errUnparsableReply)
}
