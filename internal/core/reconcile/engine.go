package reconcile

import (
	"context"
	"fmt"
	"time"

	"homecuistot/internal/core/proposal"
	"homecuistot/internal/core/session"
	"homecuistot/internal/pkg/common"

	"go.uber.org/zap"
)

// Engine 執行一個回合：讀取快照、依序套用每個請求、最後寫回一次
//
// 引擎假設同一對話同時只有一個寫入者，並行的呼叫端需依對話排隊（見 queue）。
type Engine struct {
	proc     *Processor
	sessions session.Store
}

// NewEngine 創建協調引擎
func NewEngine(matcher Matcher, sessions session.Store, opts ...Option) *Engine {
	return &Engine{
		proc:     NewProcessor(matcher, opts...),
		sessions: sessions,
	}
}

// Processor 回傳底層處理器
func (e *Engine) Processor() *Processor {
	return e.proc
}

// Apply 依序套用請求並組裝提案，不碰會話儲存
//
// 失敗時不回傳提案，快照保持原樣。
func (e *Engine) Apply(ctx context.Context, snap session.Snapshot, reqs []Request) (*proposal.Proposal, session.Snapshot, error) {
	asm := proposal.NewAssembler()
	current := snap

	for i, req := range reqs {
		if req == nil {
			continue
		}
		res, next, err := req.dispatch(ctx, e.proc, current)
		if err != nil {
			return nil, snap, fmt.Errorf("request %d (%s): %w", i, req.Kind(), err)
		}
		asm.Add(res)
		current = next
	}

	return asm.Proposal(), current, nil
}

// ProcessTurn 對已儲存的快照套用請求，全部成功才寫回；空批次不碰儲存
func (e *Engine) ProcessTurn(ctx context.Context, conversationID string, reqs []Request) (*proposal.Proposal, error) {
	if len(reqs) == 0 {
		return proposal.NewAssembler().Proposal(), nil
	}

	start := time.Now()
	snap, err := e.sessions.Get(ctx, conversationID)
	if err != nil {
		return nil, common.ErrSessionUnavailable.Wrap(err)
	}

	p, next, err := e.Apply(ctx, snap, reqs)
	if err != nil {
		common.LogWarn("turn failed",
			zap.String("conversation_id", conversationID),
			zap.Int("requests", len(reqs)),
			zap.Error(err),
		)
		return nil, err
	}

	if err := e.sessions.Set(ctx, conversationID, next); err != nil {
		return nil, common.ErrSessionUnavailable.Wrap(err)
	}

	common.LogInfo("turn processed",
		zap.String("conversation_id", conversationID),
		zap.Int("requests", len(reqs)),
		zap.Int("created", p.Counts.Created),
		zap.Int("updated", p.Counts.Updated),
		zap.Int("deleted", p.Counts.Deleted),
		zap.Int("not_found", p.Counts.NotFound),
		zap.Int("unrecognized", p.Counts.Unrecognized),
		zap.Duration("duration", time.Since(start)),
	)
	return p, nil
}

// Cooked 產生煮完食譜後的庫存提案，並寫回可提交的扣減
func (e *Engine) Cooked(ctx context.Context, conversationID, recipeID string) (*proposal.CookedResult, error) {
	snap, err := e.sessions.Get(ctx, conversationID)
	if err != nil {
		return nil, common.ErrSessionUnavailable.Wrap(err)
	}

	res, next, err := e.proc.DecrementCooked(ctx, recipeID, snap)
	if err != nil {
		return nil, err
	}
	if !res.Found {
		return res, nil
	}

	if err := e.sessions.Set(ctx, conversationID, next); err != nil {
		return nil, common.ErrSessionUnavailable.Wrap(err)
	}

	common.LogInfo("recipe cooked",
		zap.String("conversation_id", conversationID),
		zap.String("recipe_id", recipeID),
		zap.Int("items", len(res.Items)),
	)
	return res, nil
}

// Snapshot 取得對話目前的快照
func (e *Engine) Snapshot(ctx context.Context, conversationID string) (session.Snapshot, error) {
	snap, err := e.sessions.Get(ctx, conversationID)
	if err != nil {
		return session.Snapshot{}, common.ErrSessionUnavailable.Wrap(err)
	}
	return snap, nil
}

// ReplaceSnapshot 整份取代對話快照
func (e *Engine) ReplaceSnapshot(ctx context.Context, conversationID string, snap session.Snapshot) error {
	if err := e.sessions.Set(ctx, conversationID, snap); err != nil {
		return common.ErrSessionUnavailable.Wrap(err)
	}
	return nil
}
