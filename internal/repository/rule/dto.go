package rule

import (
	"encoding/json"
	"fmt"

	domrule "github.com/kailas-cloud/searchd/internal/domain/rule"
)

// factorRow is the JSON-serializable representation of a factor.
type factorRow struct {
	Field  string            `json:"field"`
	Weight float64           `json:"weight"`
	Mode   string            `json:"mode,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// ruleRow is the JSON-serializable representation of a sort rule, stored as one hash field value.
type ruleRow struct {
	RuleID  string      `json:"ruleId"`
	AppKey  string      `json:"appKey"`
	Factors []factorRow `json:"factors"`
	Enabled bool        `json:"enabled"`
}

// ruleToJSON converts a domain SortRule to its stored form.
func ruleToJSON(r domrule.SortRule) (string, error) {
	rows := make([]factorRow, len(r.Factors()))
	for i, f := range r.Factors() {
		rows[i] = factorRow{Field: f.Field(), Weight: f.Weight(), Mode: string(f.Mode()), Params: f.Params()}
	}
	data, err := json.Marshal(ruleRow{RuleID: r.ID(), AppKey: r.AppKey(), Factors: rows, Enabled: r.Enabled()})
	if err != nil {
		return "", fmt.Errorf("marshal rule: %w", err)
	}
	return string(data), nil
}

// ruleFromJSON hydrates and revalidates a domain SortRule from its stored form.
func ruleFromJSON(data string) (domrule.SortRule, error) {
	var row ruleRow
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		return domrule.SortRule{}, fmt.Errorf("unmarshal rule: %w", err)
	}
	factors := make([]domrule.Factor, len(row.Factors))
	for i, fr := range row.Factors {
		f, err := domrule.NewFactor(fr.Field, fr.Weight, domrule.Mode(fr.Mode), fr.Params)
		if err != nil {
			return domrule.SortRule{}, err
		}
		factors[i] = f
	}
	return domrule.New(row.RuleID, row.AppKey, factors, row.Enabled)
}
