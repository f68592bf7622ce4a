// Package ai 以語言模型將自由文字的廚房更新轉為結構化請求，位於協調引擎前方，引擎不會呼叫它
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homecuistot/internal/core/ai/provider"
	"homecuistot/internal/core/reconcile"
	"homecuistot/internal/core/session"
	"homecuistot/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	maxRecipes     = reconcile.MaxRecipesPerBatch
	maxIngredients = reconcile.MaxIngredientsPerBatch
	maxDeleteIDs   = reconcile.MaxDeleteIDsPerBatch

	// maxAttempts 第一次解析失敗時帶著錯誤原因重試一次
	maxAttempts = 2
)

// Extractor 意圖擷取器
type Extractor struct {
	provider    provider.Provider
	temperature float64
}

// NewExtractor 創建意圖擷取器
func NewExtractor(p provider.Provider) *Extractor {
	return &Extractor{provider: p, temperature: 0.1}
}

// Extract 向模型取得對應語句的請求批次
//
// 無法解碼或驗證的輸出會附上原因重試一次。供應商失敗或第二次仍不合格時回傳 ErrIntentFailed。
func (e *Extractor) Extract(ctx context.Context, utterance string, snap session.Snapshot) ([]reconcile.Request, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, common.NewValidationError("utterance is required")
	}

	prompt := buildExtractionPrompt(utterance, snap)
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		resp, err := e.provider.Generate(ctx, &provider.Request{
			Messages:    []provider.Message{{Role: "user", Content: prompt}},
			Temperature: e.temperature,
		})
		common.LogAICall(time.Since(start), err, e.provider.GetModel())
		if err != nil {
			return nil, common.ErrIntentFailed.Wrap(err)
		}

		reqs, err := parseRequests(resp.Content)
		if err == nil {
			common.LogDebug("intent extracted",
				zap.Int("attempt", attempt),
				zap.Int("requests", len(reqs)),
				zap.Int("total_tokens", resp.Usage.TotalTokens),
			)
			return reqs, nil
		}

		lastErr = err
		common.LogWarn("model returned unusable requests",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		prompt = buildExtractionPromptWithCorrection(utterance, snap, err.Error())
	}

	return nil, common.ErrIntentFailed.Wrap(lastErr)
}

// parseRequests 擷取 JSON 後解碼與驗證；合法 JSON 原樣解碼，失敗才補齊鍵的引號再試
func parseRequests(content string) ([]reconcile.Request, error) {
	raw := common.ExtractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("empty answer")
	}

	reqs, err := decodeAnswer(raw)
	if err != nil {
		quoted := common.QuoteJSONKeys(raw)
		if quoted == raw {
			return nil, err
		}
		if reqs, err = decodeAnswer(quoted); err != nil {
			return nil, err
		}
	}
	if err := reconcile.Validate(reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// decodeAnswer 單一物件視為只有一個元素的陣列
func decodeAnswer(raw string) ([]reconcile.Request, error) {
	if strings.HasPrefix(raw, "{") {
		raw = "[" + raw + "]"
	}
	return reconcile.DecodeRequests([]byte(raw))
}
