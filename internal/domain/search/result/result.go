package result

// Card is a single ranked row returned by the vector database.
type Card struct {
	Name         string    `json:"name"`
	CardID       string    `json:"card_id"`
	Img          string    `json:"img"`
	ManaCost     string    `json:"mana_cost"`
	Type         string    `json:"type"`
	ManaProduced string    `json:"mana_produced"`
	Power        string    `json:"power"`
	Toughness    string    `json:"toughness"`
	Color        string    `json:"color"`
	Keyword      string    `json:"keyword"`
	Set          string    `json:"set"`
	Rarity       string    `json:"rarity"`
	Description  string    `json:"description"`
	ID           string    `json:"id"`
	Distance     float64   `json:"distance"`
	Vector       []float32 `json:"vector,omitempty"`
}

// HasImage reports whether the card carries an image reference.
func (c *Card) HasImage() bool { return c.Img != "" }

// Set is an ordered result set for one query.
type Set struct {
	Cards []Card `json:"cards"`
	// Generated is the grouped generation output (generative mode only).
	Generated string `json:"generated,omitempty"`
	// GenerateError is the generation failure reported by the database, if any.
	GenerateError string `json:"generate_error,omitempty"`
}

// Len returns the number of ranked rows.
func (s *Set) Len() int { return len(s.Cards) }
