package gamma

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jcarver/marketboard/internal/models"
)

// Gamma has two serialization quirks this package absorbs: list-valued
// fields (outcomes, outcomePrices, clobTokenIds) arrive as JSON-encoded
// strings inside the JSON document, and numeric fields arrive as either
// numbers or quoted strings depending on the endpoint.

type rawMarket struct {
	ID            string      `json:"id"`
	Question      string      `json:"question"`
	Slug          string      `json:"slug"`
	ConditionID   string      `json:"conditionId"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Image         string      `json:"image"`
	Outcomes      string      `json:"outcomes"`
	OutcomePrices string      `json:"outcomePrices"`
	ClobTokenIDs  string      `json:"clobTokenIds"`
	Volume        flexFloat   `json:"volume"`
	VolumeNum     flexFloat   `json:"volumeNum"`
	Liquidity     flexFloat   `json:"liquidity"`
	LiquidityNum  flexFloat   `json:"liquidityNum"`
	Active        bool        `json:"active"`
	Closed        bool        `json:"closed"`
	EndDateISO    string      `json:"endDateIso"`
	EndDate       string      `json:"endDate"`
	Events        []rawParent `json:"events"`
}

type rawParent struct {
	Tags []rawTag `json:"tags"`
}

type rawEvent struct {
	ID          string      `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Volume      flexFloat   `json:"volume"`
	Liquidity   flexFloat   `json:"liquidity"`
	Active      bool        `json:"active"`
	Closed      bool        `json:"closed"`
	Featured    bool        `json:"featured"`
	StartDate   string      `json:"startDate"`
	EndDate     string      `json:"endDate"`
	Markets     []rawMarket `json:"markets"`
	Tags        []rawTag    `json:"tags"`
}

type rawTag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// flexFloat decodes a number that may be quoted.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

func (m rawMarket) toModel() models.Market {
	volume := float64(m.VolumeNum)
	if volume == 0 {
		volume = float64(m.Volume)
	}
	liquidity := float64(m.LiquidityNum)
	if liquidity == 0 {
		liquidity = float64(m.Liquidity)
	}

	market := models.Market{
		ID:            m.ID,
		Question:      m.Question,
		Slug:          m.Slug,
		ConditionID:   m.ConditionID,
		Description:   m.Description,
		Category:      m.Category,
		ImageURL:      m.Image,
		Outcomes:      decodeStringList(m.Outcomes),
		OutcomePrices: decodeFloatList(m.OutcomePrices),
		ClobTokenIDs:  decodeStringList(m.ClobTokenIDs),
		Volume:        volume,
		Liquidity:     liquidity,
		Active:        m.Active,
		Closed:        m.Closed,
		EndDate:       parseTime(m.EndDateISO, m.EndDate),
	}

	for _, parent := range m.Events {
		for _, t := range parent.Tags {
			market.Tags = append(market.Tags, t.Label)
		}
	}
	return market
}

func (e rawEvent) toModel() models.Event {
	event := models.Event{
		ID:          e.ID,
		Slug:        e.Slug,
		Title:       e.Title,
		Description: e.Description,
		ImageURL:    e.Image,
		Volume:      float64(e.Volume),
		Liquidity:   float64(e.Liquidity),
		Active:      e.Active,
		Closed:      e.Closed,
		Featured:    e.Featured,
		StartDate:   parseTime(e.StartDate),
		EndDate:     parseTime(e.EndDate),
	}

	for _, m := range e.Markets {
		event.Markets = append(event.Markets, m.toModel())
	}
	for _, t := range e.Tags {
		event.Tags = append(event.Tags, models.Tag{ID: t.ID, Label: t.Label, Slug: t.Slug})
	}
	return event
}

// decodeStringList turns Gamma's `"[\"Yes\", \"No\"]"` into a real slice.
func decodeStringList(encoded string) []string {
	if strings.TrimSpace(encoded) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(encoded), &out); err != nil {
		return nil
	}
	return out
}

// decodeFloatList turns Gamma's `"[\"0.72\", \"0.28\"]"` into floats.
func decodeFloatList(encoded string) []float64 {
	values := decodeStringList(encoded)
	if values == nil {
		return nil
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			f = 0
		}
		out = append(out, f)
	}
	return out
}

func parseTime(candidates ...string) time.Time {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, c); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", c); err == nil {
			return t
		}
	}
	return time.Time{}
}
