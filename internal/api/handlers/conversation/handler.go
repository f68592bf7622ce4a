package conversation

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"homecuistot/internal/api/handlers"
	"homecuistot/internal/core/proposal"
	"homecuistot/internal/core/queue"
	"homecuistot/internal/core/reconcile"
	"homecuistot/internal/core/session"
	"homecuistot/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Extractor 把一句話轉成請求批次
type Extractor interface {
	Extract(ctx context.Context, utterance string, snap session.Snapshot) ([]reconcile.Request, error)
}

// Handler 對話相關處理器
//
// 同一對話的寫入都經過 queue，以對話 ID 為 key，確保依序執行。
type Handler struct {
	engine    *reconcile.Engine
	queue     *queue.Manager
	extractor Extractor
	debug     bool
}

// NewHandler 創建對話處理器；extractor 為 nil 時 utterances 路由回 501
func NewHandler(engine *reconcile.Engine, q *queue.Manager, extractor Extractor, debug bool) *Handler {
	return &Handler{
		engine:    engine,
		queue:     q,
		extractor: extractor,
		debug:     debug,
	}
}

// Register 註冊路由
func (h *Handler) Register(group *gin.RouterGroup) {
	conv := group.Group("/conversations/:id")
	conv.GET("/session", h.GetSession)
	conv.PUT("/session", h.PutSession)
	conv.POST("/turns", h.PostTurn)
	conv.POST("/utterances", h.PostUtterance)
	conv.POST("/recipes/:recipeId/cooked", h.PostCooked)
}

// TurnRequest 一次對話回合的請求體
type TurnRequest struct {
	Requests json.RawMessage `json:"requests"`
}

// TurnResponse 一次對話回合的響應
type TurnResponse struct {
	Requests json.RawMessage    `json:"requests,omitempty"`
	Proposal *proposal.Proposal `json:"proposal"`
}

// UtteranceRequest 自然語句請求體
type UtteranceRequest struct {
	Text string `json:"text"`
}

// GetSession 取得對話快照
func (h *Handler) GetSession(c *gin.Context) {
	snap, err := h.engine.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// PutSession 整份取代對話快照
func (h *Handler) PutSession(c *gin.Context) {
	var snap session.Snapshot
	if err := bindJSONStrict(c, &snap); err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}
	if snap.Inventory == nil {
		snap.Inventory = []session.InventoryItem{}
	}
	if snap.Recipes == nil {
		snap.Recipes = []session.Recipe{}
	}

	id := c.Param("id")
	_, err := h.queue.Do(c.Request.Context(), id, func(ctx context.Context) (interface{}, error) {
		return nil, h.engine.ReplaceSnapshot(ctx, id, snap)
	})
	if err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// PostTurn 處理結構化請求批次並回傳提案
func (h *Handler) PostTurn(c *gin.Context) {
	var body TurnRequest
	if err := bindJSON(c, &body); err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}
	if len(body.Requests) == 0 {
		handlers.WriteError(c, common.NewValidationError("requests is required"), h.debug)
		return
	}

	reqs, err := reconcile.DecodeRequests(body.Requests)
	if err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}
	if err := reconcile.Validate(reqs); err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}

	id := c.Param("id")
	v, err := h.queue.Do(c.Request.Context(), id, func(ctx context.Context) (interface{}, error) {
		return h.engine.ProcessTurn(ctx, id, reqs)
	})
	if err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, TurnResponse{Proposal: v.(*proposal.Proposal)})
}

// PostUtterance 以語言模型擷取請求後處理
func (h *Handler) PostUtterance(c *gin.Context) {
	if h.extractor == nil {
		handlers.WriteError(c, common.ErrNotImplemented, h.debug)
		return
	}

	var body UtteranceRequest
	if err := bindJSON(c, &body); err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}
	text := strings.TrimSpace(body.Text)
	if text == "" {
		handlers.WriteError(c, common.NewValidationError("text is required"), h.debug)
		return
	}

	id := c.Param("id")
	v, err := h.queue.Do(c.Request.Context(), id, func(ctx context.Context) (interface{}, error) {
		snap, err := h.engine.Snapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		reqs, err := h.extractor.Extract(ctx, text, snap)
		if err != nil {
			return nil, err
		}
		p, err := h.engine.ProcessTurn(ctx, id, reqs)
		if err != nil {
			return nil, err
		}
		encoded, err := reconcile.EncodeRequests(reqs)
		if err != nil {
			return nil, err
		}
		return &TurnResponse{Requests: encoded, Proposal: p}, nil
	})
	if err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}

	resp := v.(*TurnResponse)
	common.LogDebug("utterance processed",
		zap.String("conversation_id", id),
		zap.Int("results", len(resp.Proposal.Results)),
	)
	c.JSON(http.StatusOK, resp)
}

// PostCooked 標記食譜已烹飪，回傳庫存遞減提案
func (h *Handler) PostCooked(c *gin.Context) {
	id, recipeID := c.Param("id"), c.Param("recipeId")
	v, err := h.queue.Do(c.Request.Context(), id, func(ctx context.Context) (interface{}, error) {
		return h.engine.Cooked(ctx, id, recipeID)
	})
	if err != nil {
		handlers.WriteError(c, err, h.debug)
		return
	}

	res := v.(*proposal.CookedResult)
	status := http.StatusOK
	if !res.Found {
		status = http.StatusNotFound
	}
	c.JSON(status, res)
}

// bindJSON 讀取請求體並以統一設定解析
func bindJSON(c *gin.Context, v interface{}) error {
	return decodeBody(c, v, common.ParseJSONBytes)
}

// bindJSONStrict 同 bindJSON，但拒絕未知欄位
func bindJSONStrict(c *gin.Context, v interface{}) error {
	return decodeBody(c, v, common.ParseJSONBytesStrict)
}

func decodeBody(c *gin.Context, v interface{}, parse func([]byte, interface{}) error) error {
	data, err := c.GetRawData()
	if err != nil {
		return common.NewValidationError("failed to read request body: " + err.Error())
	}
	if err := parse(data, v); err != nil {
		return common.NewValidationError("invalid JSON body: " + err.Error())
	}
	return nil
}
