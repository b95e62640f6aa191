package adplan

import (
	"encoding/json"
	"fmt"
	"strings"

	"adwise-ai-api/internal/domain/entity"
	wfnode "adwise-ai-api/internal/workflow/node"
)

// ParseCampaignPlan 从模型输出中解析 CampaignPlan，并返回“截取后的 JSON 文本”。
func ParseCampaignPlan(rawText string) (*entity.CampaignPlan, string, error) {
	jsonText := wfnode.ExtractJSONObject(rawText)
	if strings.TrimSpace(jsonText) == "" {
		return nil, jsonText, fmt.Errorf("empty campaign plan output")
	}

	var plan entity.CampaignPlan
	if err := json.Unmarshal([]byte(jsonText), &plan); err != nil {
		return nil, jsonText, fmt.Errorf("failed to parse campaign plan json: %w", err)
	}
	return &plan, jsonText, nil
}
