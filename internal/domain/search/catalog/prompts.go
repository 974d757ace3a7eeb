package catalog

import (
	"fmt"

	"github.com/kailas-cloud/magicchat/internal/domain"
)

// Prompt is a preset example query shown as a button.
type Prompt struct {
	Text string `json:"text"`
	Help string `json:"help"`
}

// Greeting is the assistant's first turn in every session.
const Greeting = "Hey! I am Magic Chat, your assistant for finding the best Magic The Gathering cards " +
	"to build your dream deck. Let's get started!"

var prompts = []Prompt{
	{"You gain life and enemy loses life", "Look for a specific card effect"},
	{"Vampires cards with flying ability", "Search for card type: 'Vampires', card color: 'black', and ability: 'flying'"},
	{"Blue and green colored sorcery cards", "Color cards and card type"},
	{"White card with protection from black", "Specifc card effect to another mana color"},
	{"The famous 'Black Lotus' card", "Search for card names"},
	{"Wizard card with Vigiliance ability", "Search for card types with specific abilities"},
}

// Prompts returns the preset example prompts in display order.
func Prompts() []Prompt {
	out := make([]Prompt, len(prompts))
	copy(out, prompts)
	return out
}

// PromptAt returns the preset at index i.
func PromptAt(i int) (Prompt, error) {
	if i < 0 || i >= len(prompts) {
		return Prompt{}, fmt.Errorf("%w: index %d", domain.ErrInvalidPreset, i)
	}
	return prompts[i], nil
}
