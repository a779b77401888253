package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ProductMatch is one ranked result returned by the detection service
type ProductMatch struct {
	Title        string   `json:"title"`
	Price        Price    `json:"price"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	ShopName     string   `json:"shopName"`
	SourceURL    string   `json:"sourceUrl,omitempty"`
	BoothURL     string   `json:"boothUrl,omitempty"` // older backends name the link boothUrl
	Score        *float64 `json:"score,omitempty"`    // relevance in [0,1]
}

// Link returns the outbound product URL
func (m ProductMatch) Link() string {
	if m.SourceURL != "" {
		return m.SourceURL
	}
	return m.BoothURL
}

// DetectionResponse is the renderer's view of the backend payload. The
// gateway itself never decodes it.
type DetectionResponse struct {
	Matches []ProductMatch `json:"matches"`
	Results []ProductMatch `json:"results,omitempty"`
}

// ParseDetectionResponse decodes a gateway success body into ordered matches.
// Order is preserved exactly as the detection service ranked it.
func ParseDetectionResponse(data []byte) ([]ProductMatch, error) {
	var resp DetectionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode detection response: %w", err)
	}
	if resp.Matches != nil {
		return resp.Matches, nil
	}
	return resp.Results, nil
}

// Price is either a number or a pre-formatted string such as "¥1200".
type Price struct {
	value   float64
	text    string
	numeric bool
}

// NumericPrice creates a price from a number
func NumericPrice(v float64) Price {
	return Price{value: v, numeric: true}
}

// TextPrice creates a price from a pre-formatted string
func TextPrice(s string) Price {
	return Price{text: s}
}

// IsNumeric reports whether the source value was a JSON number
func (p Price) IsNumeric() bool {
	return p.numeric
}

// Value returns the numeric value; zero for text prices
func (p Price) Value() float64 {
	return p.value
}

// Text returns the source string; empty for numeric prices
func (p Price) Text() string {
	return p.text
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = TextPrice(s)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("price must be a number or string: %w", err)
	}
	*p = NumericPrice(v)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.numeric {
		return json.Marshal(p.value)
	}
	return json.Marshal(p.text)
}
