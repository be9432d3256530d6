package plan

import (
	"encoding/json"

	"github.com/zintix-labs/randlab/errs"
	"gopkg.in/yaml.v3"
)

// GetTrialPlanByYAML
// 會讀取 YAML 設定、正規化欄位並執行基本檢查後回傳。
func GetTrialPlanByYAML(data []byte) (*TrialPlan, error) {
	tp := &TrialPlan{}
	if err := yaml.Unmarshal(data, tp); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}

	// 設定檔初始化
	if err := tp.init(); err != nil {
		return nil, errs.Wrap(err, "trial plan initialized err")
	}

	return tp, nil
}

// GetTrialPlanByJSON
// 會讀取 Json 設定、正規化欄位並執行基本檢查後回傳
func GetTrialPlanByJSON(data []byte) (*TrialPlan, error) {
	tp := &TrialPlan{}
	if err := json.Unmarshal(data, tp); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}

	// 設定檔初始化
	if err := tp.init(); err != nil {
		return nil, errs.Wrap(err, "trial plan initialized err")
	}

	return tp, nil
}
