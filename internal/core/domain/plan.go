package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Plan is a subscription tier a business pays for.
type Plan struct {
	ID       int      `json:"id_plan"`
	Name     string   `json:"nombre"`
	Price    Price    `json:"precio"`
	Status   Status   `json:"estado"`
	Features []string `json:"caracteristicas"`
}

func (p Plan) IsActive() bool { return p.Status.IsActive() }

// UnmarshalJSON also accepts the older "features" key.
func (p *Plan) UnmarshalJSON(b []byte) error {
	type plain Plan
	var aux struct {
		plain
		Legacy []string `json:"features"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Plan(aux.plain)
	if p.Features == nil {
		p.Features = aux.Legacy
	}
	return nil
}

// ActivePlans keeps only plans in the active state, in order.
func ActivePlans(plans []Plan) []Plan {
	out := make([]Plan, 0, len(plans))
	for _, p := range plans {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out
}

// Price is a plan price. The API sends it either as a number or as a
// numeric string.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

func (p Price) String() string {
	return strconv.FormatFloat(float64(p), 'f', 2, 64)
}

// NormalizeFeatures trims every feature and drops the empty ones.
func NormalizeFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
