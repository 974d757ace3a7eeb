// Package chat runs chat turns: it resolves the user's input, queries the card
// database and appends the user and assistant turns to the session history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/magicchat/internal/domain"
	"github.com/kailas-cloud/magicchat/internal/domain/chat"
	"github.com/kailas-cloud/magicchat/internal/domain/search/catalog"
	"github.com/kailas-cloud/magicchat/internal/domain/search/mode"
	"github.com/kailas-cloud/magicchat/internal/domain/search/result"
	"github.com/kailas-cloud/magicchat/internal/logger"
	"github.com/kailas-cloud/magicchat/internal/metrics"
)

// DefaultMode is used when the input names no mode.
const DefaultMode = mode.Generative

// Input is one user interaction: typed text or a preset prompt, plus search settings.
type Input struct {
	Text string
	// Preset selects a preset prompt by index and takes precedence over Text.
	Preset *int
	// Mode is a case-insensitive mode name; empty selects DefaultMode.
	Mode string
	// Limit is the requested result count; it is clamped to the mode's bounds.
	Limit int
}

// Reply is the assistant turn produced for one input.
type Reply struct {
	Turn chat.Turn
	// Rows is the turn's image list grouped for display.
	Rows [][]chat.Image
	// Limit is the effective result cap sent to the database.
	Limit int
}

// Service executes chat turns.
type Service struct {
	searcher Searcher
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a chat service.
func New(searcher Searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{searcher: searcher, now: time.Now, logger: logger}
}

// Ask runs one turn on sess. The user turn is appended before the database is
// queried, so it stays in the history even when the query fails. onChunk receives
// the reply token by token before the assistant turn is appended; pacing is up
// to the caller and a nil onChunk skips the reveal.
func (s *Service) Ask(ctx context.Context, sess *chat.Session, in Input, onChunk func(string)) (Reply, error) {
	if err := sess.Begin(); err != nil {
		return Reply{}, err
	}
	defer sess.Finish()

	spec, err := resolveMode(in.Mode)
	if err != nil {
		return Reply{}, err
	}
	text, err := resolveText(in)
	if err != nil {
		return Reply{}, err
	}

	log := logger.FromContextOr(ctx, s.logger).With(
		zap.String("session_id", sess.ID()),
		zap.String("mode", string(spec.Mode)),
	)

	sess.Append(chat.Turn{
		Role:      chat.RoleUser,
		Content:   text,
		Mode:      spec.Mode,
		CreatedAt: s.now(),
	})

	limit := spec.ClampLimit(in.Limit)
	q := spec.Build(catalog.Sanitize(text), limit)

	if err := sess.Submit(); err != nil {
		return Reply{}, err
	}
	set, err := s.searcher.Search(ctx, q)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues(string(spec.Mode), "error").Inc()
		log.Warn("Turn failed", zap.Error(err))
		if !errors.Is(err, domain.ErrExternalQuery) {
			err = fmt.Errorf("%w: %w", domain.ErrExternalQuery, err)
		}
		return Reply{}, err
	}
	if set.GenerateError != "" {
		log.Warn("Generation failed", zap.String("generate_error", set.GenerateError))
	}

	if err := sess.Stream(); err != nil {
		return Reply{}, err
	}
	content := replyText(spec.Mode, set)
	if onChunk != nil {
		for c := range chat.Chunks(content) {
			onChunk(c)
		}
	}

	images := imagesFor(set.Cards)
	turn := chat.Turn{
		Role:      chat.RoleAssistant,
		Content:   content,
		Images:    images,
		Mode:      spec.Mode,
		CreatedAt: s.now(),
	}
	sess.Append(turn)

	metrics.TurnsTotal.WithLabelValues(string(spec.Mode), "success").Inc()
	log.Info("Turn completed", zap.Int("limit", limit), zap.Int("rows", set.Len()))

	return Reply{
		Turn:  turn,
		Rows:  chat.Grid(images, chat.RowWidth),
		Limit: limit,
	}, nil
}

func resolveMode(name string) (catalog.Spec, error) {
	if strings.TrimSpace(name) == "" {
		return catalog.Get(DefaultMode)
	}
	return catalog.Lookup(name)
}

func resolveText(in Input) (string, error) {
	text := in.Text
	if in.Preset != nil {
		p, err := catalog.PromptAt(*in.Preset)
		if err != nil {
			return "", err
		}
		text = p.Text
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrEmptyUtterance
	}
	return text, nil
}

// replyText is the grouped generation output when present, otherwise a fixed intro.
func replyText(m mode.Mode, set result.Set) string {
	if m.IsGenerative() && strings.TrimSpace(set.Generated) != "" {
		return strings.TrimSpace(set.Generated)
	}
	return fmt.Sprintf("Here are the results from the %s search:", m)
}

// imagesFor returns one cell per row in result order.
func imagesFor(cards []result.Card) []chat.Image {
	images := make([]chat.Image, len(cards))
	for i := range cards {
		if cards[i].HasImage() {
			images[i] = chat.Image{URL: cards[i].Img}
			continue
		}
		images[i] = chat.Image{Placeholder: "No Image Available for: " + cards[i].Type}
	}
	return images
}
