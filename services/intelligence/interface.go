// File: services/intelligence/interface.go
package ai

import (
	"context"
	"errors"
	"strings"

	"solobuddy/models"
	"solobuddy/utils"

	"go.uber.org/zap"
)

// maxTurns bounds the remembered conversation sent back to the model.
const maxTurns = 10

// Translator turns a traveler's message into a guide filter and a reply.
type Translator interface {
	Translate(ctx context.Context, history []models.AITurn, message string) (*models.AITranslation, error)
}

// GuideSearcher runs validated guide searches.
type GuideSearcher interface {
	Search(ctx context.Context, filter models.GuideFilter, page, limit int) (models.Page[models.GuideDTO], error)
}

type ContextStore interface {
	Get(ctx context.Context, userID string) (*models.AIContext, error)
	Set(ctx context.Context, userID string, aiCtx *models.AIContext) error
	Clear(ctx context.Context, userID string) error
}

type AIService interface {
	Answer(ctx context.Context, req models.AIRequest) (*models.AIResponse, error)
}

type DefaultAIService struct {
	Translator Translator
	Store      ContextStore
	Guides     GuideSearcher
	Logger     *zap.Logger
	PageSize   int
}

func NewAIService(translator Translator, store ContextStore, guides GuideSearcher, logger *zap.Logger) *DefaultAIService {
	return &DefaultAIService{Translator: translator, Store: store, Guides: guides, Logger: logger, PageSize: 10}
}

// Answer asks the model for a filter, runs it and remembers the exchange.
// A filter the model got wrong yields the reply with no guides.
func (s *DefaultAIService) Answer(ctx context.Context, req models.AIRequest) (*models.AIResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, utils.Validation("message is required")
	}
	logger := s.Logger.With(zap.String("userId", req.UserID))

	aiCtx, err := s.Store.Get(ctx, req.UserID)
	if err != nil {
		logger.Warn("Failed to load AI context, starting fresh", zap.Error(err))
		aiCtx = &models.AIContext{}
	}

	translation, err := s.Translator.Translate(ctx, aiCtx.Turns, message)
	if err != nil {
		logger.Error("Guide search translation failed", zap.Error(err))
		return nil, utils.Upstream("AI service is unavailable", err)
	}

	guides, err := s.Guides.Search(ctx, translation.Filter, 1, s.PageSize)
	if err != nil {
		var appErr *utils.AppError
		if !errors.As(err, &appErr) || appErr.Kind != utils.KindValidation {
			return nil, err
		}
		logger.Warn("Model produced an invalid guide filter", zap.Strings("details", appErr.Details))
		guides = models.Page[models.GuideDTO]{Results: []models.GuideDTO{}, Page: 1, Limit: s.PageSize}
	}

	aiCtx.Turns = append(aiCtx.Turns,
		models.AITurn{Role: "user", Text: message},
		models.AITurn{Role: "model", Text: translation.ResponseText},
	)
	if len(aiCtx.Turns) > maxTurns {
		aiCtx.Turns = aiCtx.Turns[len(aiCtx.Turns)-maxTurns:]
	}
	if err := s.Store.Set(ctx, req.UserID, aiCtx); err != nil {
		logger.Warn("Failed to save AI context", zap.Error(err))
	}

	return &models.AIResponse{Response: *translation, Guides: guides}, nil
}
