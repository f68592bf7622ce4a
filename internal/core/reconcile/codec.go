package reconcile

import (
	"encoding/json"
	"fmt"

	"homecuistot/internal/core/proposal"
	"homecuistot/internal/pkg/common"
)

// envelope 請求外層，以 type 區分變體
type envelope struct {
	Type proposal.Kind `json:"type"`
}

// DecodeRequests 解碼 {"type": ...} 外層組成的 JSON 陣列
func DecodeRequests(data []byte) ([]Request, error) {
	var raws []json.RawMessage
	if err := common.ParseJSONBytes(data, &raws); err != nil {
		return nil, common.NewValidationError(fmt.Sprintf("requests must be a JSON array: %v", err))
	}

	reqs := make([]Request, 0, len(raws))
	for i, raw := range raws {
		req, err := DecodeRequest(raw)
		if err != nil {
			return nil, common.NewValidationError(fmt.Sprintf("request %d: %v", i, err))
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// DecodeRequest 將單一外層解碼為對應的變體
func DecodeRequest(raw []byte) (Request, error) {
	var env envelope
	if err := common.ParseJSONBytes(raw, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case proposal.KindInventoryUpsert:
		return decodeAs[InventoryUpsert](raw)
	case proposal.KindInventoryBulk:
		return decodeAs[InventoryBulk](raw)
	case proposal.KindInventoryDeleteAll:
		return InventoryDeleteAll{}, nil
	case proposal.KindRecipeCreate:
		return decodeAs[RecipeCreate](raw)
	case proposal.KindRecipeUpdate:
		return decodeAs[RecipeUpdate](raw)
	case proposal.KindRecipeDelete:
		return decodeAs[RecipeDelete](raw)
	case proposal.KindRecipeDeleteAll:
		return decodeAs[RecipeDeleteAll](raw)
	case "":
		return nil, fmt.Errorf("missing request type")
	default:
		return nil, fmt.Errorf("unknown request type %q", env.Type)
	}
}

func decodeAs[T Request](raw []byte) (Request, error) {
	var v T
	if err := common.ParseJSONBytes(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeRequests 將請求編碼為 DecodeRequests 接受的外層格式
func EncodeRequests(reqs []Request) ([]byte, error) {
	out := make([]map[string]interface{}, 0, len(reqs))
	for _, req := range reqs {
		if req == nil {
			continue
		}
		data, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}
		fields := map[string]interface{}{}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
		fields["type"] = req.Kind()
		out = append(out, fields)
	}
	return json.Marshal(out)
}
