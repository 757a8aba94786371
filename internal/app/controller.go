package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mapcrown/mapcrown/internal/analytics"
	"github.com/mapcrown/mapcrown/internal/dataset"
	"github.com/mapcrown/mapcrown/internal/enrich"
	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/platform/metrics"
	"github.com/mapcrown/mapcrown/internal/push"
	"github.com/mapcrown/mapcrown/internal/quiz"
	"github.com/mapcrown/mapcrown/internal/render"
	"github.com/mapcrown/mapcrown/internal/selection"
)

// LiveDetailsNotice is shown when country metadata could not be fetched.
const LiveDetailsNotice = "Live details unavailable"

// DocumentLoader returns the parsed dataset of a category.
type DocumentLoader interface {
	Load(ctx context.Context, c place.Category) (*dataset.Document, error)
}

// CountryEnricher fetches live metadata for a selected country.
type CountryEnricher interface {
	Lookup(ctx context.Context, props place.Properties, name string) (enrich.Country, error)
}

// FactFinder returns facts about a place. It never fails.
type FactFinder interface {
	Facts(ctx context.Context, c place.Category, name string) enrich.Facts
}

// Publisher pushes messages to the subscribers of a session.
type Publisher interface {
	Publish(ctx context.Context, sessionID string, msg push.Message) error
}

// Config holds the controller's collaborators. Loader and Resolver are
// required; everything else has a usable zero value.
type Config struct {
	Loader    DocumentLoader
	Resolver  *place.Resolver
	Formatter *place.Formatter
	Renderer  *render.Renderer
	Countries CountryEnricher
	Facts     FactFinder
	Trivia    *quiz.Bank
	Events    analytics.Logger
	Push      Publisher

	Focus         place.Focus
	Points        int
	AdvanceDelay  time.Duration
	MinFocusPool  int
	EnrichTimeout time.Duration
	Now           func() time.Time
}

type layerKey struct {
	category place.Category
	focused  bool
}

// Controller implements the user-facing operations on top of Session.
type Controller struct {
	cfg Config

	mu      sync.Mutex
	layers  map[layerKey]*render.Layer
	pools   map[layerKey]quiz.Pool
	dailies map[quiz.DailySeed]*quiz.Daily

	bg sync.WaitGroup
}

// NewController fills defaults and returns a Controller.
func NewController(cfg Config) *Controller {
	if cfg.Formatter == nil {
		cfg.Formatter = place.NewFormatter(place.DefaultLocale)
	}
	if cfg.Resolver == nil {
		cfg.Resolver = place.NewResolver(nil, cfg.Formatter)
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.New(cfg.Resolver, render.Options{SamplingStep: 2, LargeDatasetThreshold: 5000, DisableClusteringAtZoom: 8, MaxClusterRadius: 50})
	}
	if cfg.Trivia == nil {
		cfg.Trivia = quiz.DefaultBank()
	}
	if cfg.Events == nil {
		cfg.Events = analytics.NopLogger{}
	}
	if cfg.Focus == nil {
		cfg.Focus = place.NoFocus
	}
	if cfg.Points <= 0 {
		cfg.Points = 10
	}
	if cfg.MinFocusPool <= 0 {
		cfg.MinFocusPool = quiz.OptionCount
	}
	if cfg.EnrichTimeout <= 0 {
		cfg.EnrichTimeout = 6 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Controller{
		cfg:     cfg,
		layers:  make(map[layerKey]*render.Layer),
		pools:   make(map[layerKey]quiz.Pool),
		dailies: make(map[quiz.DailySeed]*quiz.Daily),
	}
}

// Wait blocks until background enrichment has finished.
func (c *Controller) Wait() { c.bg.Wait() }

func (c *Controller) logEvent(ctx context.Context, s *Session, typ string, data map[string]any) {
	if err := c.cfg.Events.LogEvent(ctx, analytics.Event{SessionID: s.ID, Type: typ, Data: data}); err != nil {
		slog.Warn("event logging failed", "type", typ, "session_id", s.ID, "error", err)
	}
}

// SwitchCategory clears the selection, makes cat active and returns its
// layer. A dataset failure leaves a persistent error panel.
func (c *Controller) SwitchCategory(ctx context.Context, s *Session, cat place.Category, focus bool) (*render.Layer, error) {
	if !cat.Valid() {
		return nil, fmt.Errorf("unknown category %q", cat)
	}

	s.mu.Lock()
	s.category = cat
	s.focus = focus
	s.facts = nil
	s.mu.Unlock()

	s.Selection.Clear()
	c.logEvent(ctx, s, analytics.CategorySwitched, map[string]any{"category": cat, "focus": focus})

	layer, err := c.Layer(ctx, cat, focus)
	if err != nil {
		var de *dataset.DataError
		if errors.As(err, &de) {
			s.Selection.Fail(de.Error(), de.Hint())
		} else {
			s.Selection.Fail(err.Error(), "")
		}
		return nil, err
	}
	s.Selection.Ready()
	return layer, nil
}

// Layer returns the rendered layer for cat. Layers are computed once per
// category and focus.
func (c *Controller) Layer(ctx context.Context, cat place.Category, focus bool) (*render.Layer, error) {
	key := layerKey{cat, focus}
	c.mu.Lock()
	l, ok := c.layers[key]
	c.mu.Unlock()
	if ok {
		return l, nil
	}

	doc, err := c.cfg.Loader.Load(ctx, cat)
	if err != nil {
		return nil, err
	}
	l = c.cfg.Renderer.Render(cat, doc, focus, c.cfg.Focus)

	c.mu.Lock()
	c.layers[key] = l
	c.mu.Unlock()
	return l, nil
}

// SelectRequest names a clicked feature. Lat and Lng, when set, are the
// click position and take precedence over the feature's own anchor.
type SelectRequest struct {
	Category  place.Category `json:"category"`
	FeatureID int            `json:"featureId"`
	Lat       *float64       `json:"lat,omitempty"`
	Lng       *float64       `json:"lng,omitempty"`
	Name      string         `json:"name,omitempty"`
}

// Select replaces the session's selection and returns the panel. For
// countries the panel starts loading and live metadata is applied in the
// background, guarded by the selection token.
func (c *Controller) Select(ctx context.Context, s *Session, req SelectRequest) (selection.Panel, error) {
	if req.Category == "" {
		req.Category = s.Category()
	}
	doc, err := c.cfg.Loader.Load(ctx, req.Category)
	if err != nil {
		return selection.Panel{}, err
	}
	if req.FeatureID < 0 || req.FeatureID >= len(doc.Features) {
		return selection.Panel{}, fmt.Errorf("%w: %s #%d", ErrUnknownFeature, req.Category, req.FeatureID)
	}
	f := doc.Features[req.FeatureID]

	var coords *place.LatLng
	if req.Lat != nil && req.Lng != nil {
		coords = &place.LatLng{Lat: *req.Lat, Lng: *req.Lng}
	} else if a, ok := f.Anchor(); ok {
		coords = &a
	}

	name := c.cfg.Resolver.ResolveName(req.Category, f.Properties)
	rows := c.cfg.Resolver.BuildDetailRows(req.Category, f.Properties, coords)
	sel := selection.Selection{
		Category:    req.Category,
		FeatureID:   f.Index,
		Name:        name,
		Properties:  f.Properties,
		Coordinates: coords,
	}

	live := req.Category == place.Countries && c.cfg.Countries != nil
	tok := s.Selection.Select(sel, "generic", rows, live)

	s.mu.Lock()
	s.facts = nil
	s.mu.Unlock()
	c.logEvent(ctx, s, analytics.FeatureSelected, map[string]any{"category": req.Category, "name": name, "featureId": f.Index})

	if live {
		c.bg.Add(1)
		go c.enrichCountry(context.WithoutCancel(ctx), s, tok, sel, rows)
	}
	return s.Selection.Panel(), nil
}

func (c *Controller) enrichCountry(ctx context.Context, s *Session, tok selection.Token, sel selection.Selection, generic []place.Row) {
	defer c.bg.Done()

	ctx, cancel := context.WithTimeout(ctx, 2*c.cfg.EnrichTimeout)
	defer cancel()

	country, err := c.cfg.Countries.Lookup(ctx, sel.Properties, sel.Name)
	applied := s.Selection.Apply(tok, func(p *selection.Panel) {
		p.Loading = false
		if err != nil {
			p.Rows = generic
			p.Notice = LiveDetailsNotice
			return
		}
		p.Mode = "live"
		p.FlagURL = country.FlagURL
		p.Rows = country.Rows(c.cfg.Formatter)
		if sel.Coordinates != nil {
			p.Rows = append(p.Rows, place.Row{Label: "Coordinates", Value: sel.Coordinates.String()})
		}
	})
	if !applied {
		metrics.StaleWritesTotal.Inc()
		slog.Debug("stale country enrichment dropped", "session_id", s.ID, "name", sel.Name)
		return
	}
	if c.cfg.Push != nil {
		msg := push.Message{Type: "panel", Payload: s.Selection.Panel()}
		if err := c.cfg.Push.Publish(ctx, s.ID, msg); err != nil {
			slog.Debug("panel push failed", "session_id", s.ID, "error", err)
		}
	}
}

// SelectByName selects the feature whose resolved name best matches name
// and returns the ranked suggestions alongside the panel.
func (c *Controller) SelectByName(ctx context.Context, s *Session, cat place.Category, name string) (selection.Panel, []place.Suggestion, error) {
	if cat == "" {
		cat = s.Category()
	}
	doc, err := c.cfg.Loader.Load(ctx, cat)
	if err != nil {
		return selection.Panel{}, nil, err
	}

	ids := make(map[string]int, len(doc.Features))
	names := make([]string, 0, len(doc.Features))
	for _, f := range doc.Features {
		n := c.cfg.Resolver.ResolveName(cat, f.Properties)
		if n == place.Unknown {
			continue
		}
		if _, dup := ids[n]; !dup {
			ids[n] = f.Index
			names = append(names, n)
		}
	}

	sugg := place.Lookup(names, name, 5)
	if len(sugg) == 0 {
		return selection.Panel{}, nil, fmt.Errorf("%w: %q in %s", ErrNoMatch, name, cat)
	}
	panel, err := c.Select(ctx, s, SelectRequest{Category: cat, FeatureID: ids[sugg[0].Name]})
	return panel, sugg, err
}

// Panel returns the session's detail panel.
func (c *Controller) Panel(s *Session) selection.Panel {
	return s.Selection.Panel()
}

// FactsView is one fact with its position in the list.
type FactsView struct {
	Key      string `json:"key"`
	Title    string `json:"title,omitempty"`
	Fact     string `json:"fact"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
	Found    bool   `json:"found"`
}

func viewOf(cur *enrich.Cursor, f enrich.Facts) FactsView {
	pos, total := cur.Position()
	return FactsView{Key: cur.Key(), Title: f.Title, Fact: cur.Current(), Position: pos, Total: total, Found: f.Found}
}

// Facts opens the facts list for the current selection. Reopening facts
// for the same place keeps the cursor position.
func (c *Controller) Facts(ctx context.Context, s *Session) (FactsView, error) {
	sel, ok := s.Selection.Current()
	if !ok {
		return FactsView{}, ErrNoSelection
	}
	if c.cfg.Facts == nil {
		return FactsView{}, fmt.Errorf("facts service disabled: %w", ErrNoFacts)
	}
	key := enrich.FactsKey(sel.Category, sel.Name)

	s.mu.Lock()
	if s.facts != nil && s.facts.Key() == key {
		cur := s.facts
		s.factsToken = sel.Token
		v := FactsView{Key: key, Fact: cur.Current()}
		v.Position, v.Total = cur.Position()
		v.Found = v.Fact != enrich.NotFoundFact
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	facts := c.cfg.Facts.Facts(ctx, sel.Category, sel.Name)
	cur := enrich.NewCursor(facts)

	// The selection may have moved on while the summary was fetched. The
	// check and the store happen under mu so a concurrent Select, which
	// clears the cursor after changing the token, cannot be overtaken.
	s.mu.Lock()
	if !s.Selection.IsCurrent(sel.Token) {
		s.mu.Unlock()
		metrics.StaleWritesTotal.Inc()
		return viewOf(cur, facts), nil
	}
	s.facts = cur
	s.factsToken = sel.Token
	s.mu.Unlock()

	c.logEvent(ctx, s, analytics.FactsOpened, map[string]any{"key": key, "found": facts.Found})
	return viewOf(cur, facts), nil
}

// NextFact advances the facts cursor circularly. A cursor whose selection
// is no longer live is not advanced.
func (c *Controller) NextFact(s *Session) (FactsView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.facts == nil || !s.Selection.IsCurrent(s.factsToken) {
		return FactsView{}, ErrNoFacts
	}
	v := FactsView{Key: s.facts.Key(), Fact: s.facts.Next()}
	v.Position, v.Total = s.facts.Position()
	v.Found = v.Fact != enrich.NotFoundFact
	return v, nil
}

// pool returns the quiz pool for cat, narrowed to the regional focus when
// that leaves enough names.
func (c *Controller) pool(ctx context.Context, cat place.Category, focus bool) (quiz.Pool, error) {
	key := layerKey{cat, focus}
	c.mu.Lock()
	p, ok := c.pools[key]
	c.mu.Unlock()
	if ok {
		return p, nil
	}

	doc, err := c.cfg.Loader.Load(ctx, cat)
	if err != nil {
		return quiz.Pool{}, err
	}
	p = quiz.PoolFromDocument(cat, doc, c.cfg.Resolver, nil)
	if focus {
		focused := quiz.PoolFromDocument(cat, doc, c.cfg.Resolver, c.cfg.Focus)
		p = quiz.Narrow(p, focused, c.cfg.MinFocusPool)
	}

	c.mu.Lock()
	c.pools[key] = p
	c.mu.Unlock()
	return p, nil
}

// Question draws a fresh question. Map-click and topic questions come from
// the category pool; trivia from the bank. A pool too small for four
// options yields a disabled question rather than an error.
func (c *Controller) Question(ctx context.Context, s *Session, mode quiz.Mode, cat place.Category) (quiz.Question, error) {
	if mode == quiz.DailyMode {
		return quiz.Question{}, ErrDailyViaChallenge
	}
	if cat == "" {
		cat = s.Category()
	}

	var (
		q   quiz.Question
		err error
	)
	if mode == quiz.Trivia {
		s.mu.Lock()
		q, err = c.cfg.Trivia.Pick(s.rng)
		s.mu.Unlock()
	} else {
		var p quiz.Pool
		p, err = c.pool(ctx, cat, s.Focused())
		if err != nil {
			return quiz.Question{}, err
		}
		s.mu.Lock()
		q, err = quiz.Build(s.rng, p, mode)
		s.mu.Unlock()
	}
	if errors.Is(err, quiz.ErrPoolExhausted) {
		q, err = quiz.ErrorQuestion(mode, cat, err), nil
	}
	if err != nil {
		return quiz.Question{}, err
	}

	s.mu.Lock()
	if s.quiz == nil || s.quiz.Mode != mode {
		s.quiz = quiz.NewSession(mode, c.cfg.Points, c.cfg.AdvanceDelay)
	}
	s.quiz.SetQuestion(q)
	s.mu.Unlock()
	return q, nil
}

// Answer scores the pending question.
func (c *Controller) Answer(ctx context.Context, s *Session, choice int) (quiz.Feedback, error) {
	s.mu.Lock()
	if s.quiz == nil {
		s.mu.Unlock()
		return quiz.Feedback{}, quiz.ErrNoQuestion
	}
	mode := s.quiz.Mode
	fb, err := s.quiz.Answer(choice)
	s.mu.Unlock()
	if err != nil {
		return quiz.Feedback{}, err
	}

	c.recordAnswer(ctx, s, mode, fb)
	return fb, nil
}

func (c *Controller) recordAnswer(ctx context.Context, s *Session, mode quiz.Mode, fb quiz.Feedback) {
	result := "wrong"
	if fb.Correct {
		result = "correct"
	}
	metrics.QuizAnswersTotal.WithLabelValues(string(mode), result).Inc()
	c.logEvent(ctx, s, analytics.QuizAnswered, map[string]any{"mode": mode, "correct": fb.Correct, "score": fb.Score})
}

// DailyView is the player's position in today's challenge.
type DailyView struct {
	Seed     quiz.DailySeed `json:"seed"`
	Question *quiz.Question `json:"question,omitempty"`
	Index    int            `json:"index"`
	Total    int            `json:"total"`
	Score    int            `json:"score"`
	Done     bool           `json:"done"`
}

func dailyView(d *quiz.Daily) DailyView {
	v := DailyView{Seed: d.Seed, Index: d.Index, Total: len(d.Questions), Score: d.Score, Done: d.Done()}
	if q, ok := d.Current(); ok {
		v.Question = &q
	}
	return v
}

// Daily returns today's challenge for the exam mode and focus, starting it
// when needed. A finished challenge stays finished until the date changes.
// When no category has enough names the view holds a disabled question.
func (c *Controller) Daily(ctx context.Context, s *Session, examMode string, focus bool) (DailyView, error) {
	seed := quiz.Seed(c.cfg.Now(), examMode, focus)

	s.mu.Lock()
	if s.daily != nil && s.daily.Seed == seed {
		v := dailyView(s.daily)
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	tmpl, err := c.dailyTemplate(ctx, seed)
	if errors.Is(err, quiz.ErrPoolExhausted) {
		q := quiz.ErrorQuestion(quiz.DailyMode, "", err)
		return DailyView{Seed: seed, Question: &q}, nil
	}
	if err != nil {
		return DailyView{}, err
	}
	d := &quiz.Daily{Seed: tmpl.Seed, Questions: tmpl.Questions}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.examMode = seed.ExamMode
	s.daily = d
	return dailyView(d), nil
}

// dailyTemplate generates the shared question set for seed once. Sessions
// copy the questions and keep their own progress.
func (c *Controller) dailyTemplate(ctx context.Context, seed quiz.DailySeed) (*quiz.Daily, error) {
	c.mu.Lock()
	d, ok := c.dailies[seed]
	c.mu.Unlock()
	if ok {
		return d, nil
	}

	pools := make(map[place.Category]quiz.Pool)
	for _, cat := range place.All() {
		p, err := c.pool(ctx, cat, seed.Focus)
		if err != nil {
			slog.Warn("daily skips category", "category", cat, "error", err)
			continue
		}
		pools[cat] = p
	}
	d, err := quiz.GenerateDaily(seed, pools)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for k := range c.dailies {
		if k.Date != seed.Date {
			delete(c.dailies, k)
		}
	}
	c.dailies[seed] = d
	c.mu.Unlock()
	slog.Info("daily challenge generated", "seed", seed.String())
	return d, nil
}

// AnswerDaily scores the current daily question and advances the index.
func (c *Controller) AnswerDaily(ctx context.Context, s *Session, choice int) (quiz.Feedback, error) {
	s.mu.Lock()
	d := s.daily
	if d == nil {
		s.mu.Unlock()
		return quiz.Feedback{}, ErrNoDaily
	}
	if d.Expired(c.cfg.Now()) {
		s.mu.Unlock()
		return quiz.Feedback{}, ErrDailyExpired
	}
	fb, err := d.Answer(choice, c.cfg.Points)
	s.mu.Unlock()
	if err != nil {
		return quiz.Feedback{}, err
	}

	c.recordAnswer(ctx, s, quiz.DailyMode, fb)
	if fb.Done {
		c.logEvent(ctx, s, analytics.DailyCompleted, map[string]any{"seed": d.Seed.String(), "score": fb.Score})
	}
	return fb, nil
}

// ExportDaily writes the session's daily challenge as a spreadsheet.
func (c *Controller) ExportDaily(w io.Writer, s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.daily == nil {
		return ErrNoDaily
	}
	return quiz.ExportDaily(w, s.daily)
}
