package weaviate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/magicchat/internal/domain/search/result"
)

type graphQLResponse struct {
	Data struct {
		Get map[string][]cardRow `json:"Get"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type cardRow struct {
	Name         flexString `json:"name"`
	CardID       flexString `json:"card_id"`
	Img          flexString `json:"img"`
	ManaCost     flexString `json:"mana_cost"`
	Type         flexString `json:"type"`
	ManaProduced flexString `json:"mana_produced"`
	Power        flexString `json:"power"`
	Toughness    flexString `json:"toughness"`
	Color        flexString `json:"color"`
	Keyword      flexString `json:"keyword"`
	Set          flexString `json:"set"`
	Rarity       flexString `json:"rarity"`
	Description  flexString `json:"description"`
	Additional   struct {
		ID       string    `json:"id"`
		Distance *float64  `json:"distance"`
		Vector   []float32 `json:"vector"`
		Generate *struct {
			GroupedResult *string `json:"groupedResult"`
			Error         *string `json:"error"`
		} `json:"generate"`
	} `json:"_additional"`
}

// decodeResponse parses a GraphQL Get response for class into a result set.
// GraphQL-level errors and a missing class entry are reported as errors.
func decodeResponse(body []byte, class string) (result.Set, error) {
	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return result.Set{}, fmt.Errorf("decode graphql response: %w", err)
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return result.Set{}, fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}

	rows, ok := resp.Data.Get[class]
	if !ok {
		return result.Set{}, fmt.Errorf("response has no Get.%s", class)
	}

	set := result.Set{Cards: make([]result.Card, 0, len(rows))}
	for i := range rows {
		r := &rows[i]
		card := result.Card{
			Name:         string(r.Name),
			CardID:       string(r.CardID),
			Img:          string(r.Img),
			ManaCost:     string(r.ManaCost),
			Type:         string(r.Type),
			ManaProduced: string(r.ManaProduced),
			Power:        string(r.Power),
			Toughness:    string(r.Toughness),
			Color:        string(r.Color),
			Keyword:      string(r.Keyword),
			Set:          string(r.Set),
			Rarity:       string(r.Rarity),
			Description:  string(r.Description),
			ID:           r.Additional.ID,
			Vector:       r.Additional.Vector,
		}
		if r.Additional.Distance != nil {
			card.Distance = *r.Additional.Distance
		}
		set.Cards = append(set.Cards, card)

		// Grouped generation is attached to the first row only.
		if i == 0 && r.Additional.Generate != nil {
			if g := r.Additional.Generate.GroupedResult; g != nil {
				set.Generated = *g
			}
			if e := r.Additional.Generate.Error; e != nil {
				set.GenerateError = *e
			}
		}
	}
	return set, nil
}

// flexString accepts any JSON scalar or array of scalars and keeps its text form.
// Card properties are loosely typed in the dataset (numbers, lists, nulls).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '[':
		var items []flexString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				parts = append(parts, string(it))
			}
		}
		*f = flexString(strings.Join(parts, ", "))
	case '{':
		return fmt.Errorf("unexpected object for scalar property")
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return err
		}
		*f = flexString(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = flexString(n.String())
	}
	return nil
}
