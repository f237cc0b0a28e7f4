// Package overlay sequences the text panels laid over the frame animation.
// Each panel fades and slides according to piecewise-linear breakpoints over
// scroll progress.
package overlay

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed timeline.yaml
var defaultTimelineYAML []byte

// ErrOverlap is returned by Validate when two panels are visible at the same
// progress and the timeline does not allow cross-fades.
var ErrOverlap = errors.New("overlay: panel active ranges overlap")

// Breakpoint fixes a panel's opacity and vertical offset at one progress value.
type Breakpoint struct {
	At      float64 `yaml:"at" json:"at"`
	Opacity float64 `yaml:"opacity" json:"opacity"`
	Y       float64 `yaml:"y" json:"y"`
}

// Item is one card or list entry inside a panel.
type Item struct {
	Title  string `yaml:"title" json:"title"`
	Body   string `yaml:"body,omitempty" json:"body,omitempty"`
	Accent string `yaml:"accent,omitempty" json:"accent,omitempty"`
}

// Stat is a large figure with a caption.
type Stat struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Panel is one overlay content block and its visibility window.
type Panel struct {
	ID          string       `yaml:"id" json:"id"`
	Layout      string       `yaml:"layout" json:"layout"`
	Heading     string       `yaml:"heading" json:"heading"`
	Subheading  string       `yaml:"subheading,omitempty" json:"subheading,omitempty"`
	Items       []Item       `yaml:"items,omitempty" json:"items,omitempty"`
	Stat        *Stat        `yaml:"stat,omitempty" json:"stat,omitempty"`
	Note        string       `yaml:"note,omitempty" json:"note,omitempty"`
	Breakpoints []Breakpoint `yaml:"breakpoints" json:"breakpoints"`
}

// CTA is the call to action shown by the last panel.
type CTA struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

// Timeline is the full authored overlay.
type Timeline struct {
	Version   string  `yaml:"version" json:"version"`
	CrossFade bool    `yaml:"crossfade" json:"crossfade"`
	CTA       CTA     `yaml:"cta" json:"cta"`
	Panels    []Panel `yaml:"panels" json:"panels"`
}

// PanelState is a panel's computed style at one progress value.
type PanelState struct {
	ID      string  `json:"id"`
	Opacity float64 `json:"opacity"`
	Y       float64 `json:"y"`
}

// State interpolates the panel's opacity and offset at progress. Before the
// first breakpoint the first values hold; after the last, the last values.
func (p Panel) State(progress float64) PanelState {
	bps := p.Breakpoints
	st := PanelState{ID: p.ID}
	if len(bps) == 0 {
		return st
	}
	first, last := bps[0], bps[len(bps)-1]
	if !(progress > first.At) {
		st.Opacity, st.Y = first.Opacity, first.Y
		return st
	}
	if progress >= last.At {
		st.Opacity, st.Y = last.Opacity, last.Y
		return st
	}
	for i := 0; i < len(bps)-1; i++ {
		a, b := bps[i], bps[i+1]
		if progress < b.At {
			t := (progress - a.At) / (b.At - a.At)
			st.Opacity = lerp(a.Opacity, b.Opacity, t)
			st.Y = lerp(a.Y, b.Y, t)
			return st
		}
	}
	st.Opacity, st.Y = last.Opacity, last.Y
	return st
}

// ActiveRange is the smallest interval of progress outside which the panel is
// invisible. ok is false for a panel that is never visible.
func (p Panel) ActiveRange() (from, to float64, ok bool) {
	bps := p.Breakpoints
	if len(bps) == 0 {
		return 0, 0, false
	}
	from, to = 1, 0
	extend := func(a, b float64) {
		if a < from {
			from = a
		}
		if b > to {
			to = b
		}
		ok = true
	}
	if bps[0].Opacity > 0 {
		extend(0, bps[0].At)
	}
	for i := 0; i < len(bps)-1; i++ {
		if bps[i].Opacity > 0 || bps[i+1].Opacity > 0 {
			extend(bps[i].At, bps[i+1].At)
		}
	}
	if last := bps[len(bps)-1]; last.Opacity > 0 {
		extend(last.At, 1)
	}
	if len(bps) == 1 && bps[0].Opacity > 0 {
		extend(0, 1)
	}
	return from, to, ok
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// DefaultTimeline returns the built-in seven-panel overlay.
func DefaultTimeline() *Timeline {
	t, err := ParseTimeline(defaultTimelineYAML)
	if err != nil {
		panic(fmt.Sprintf("overlay: built-in timeline is invalid: %v", err))
	}
	return t
}

// LoadTimeline reads and validates a YAML timeline file.
func LoadTimeline(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ParseTimeline(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTimeline decodes and validates a YAML timeline.
func ParseTimeline(data []byte) (*Timeline, error) {
	var t Timeline
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse timeline: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the authoring invariants: unique panel ids, at least two
// breakpoints each, strictly increasing positions inside [0, 1], opacities in
// [0, 1], and no two panels visible at once unless CrossFade is set.
func (t *Timeline) Validate() error {
	seen := make(map[string]bool, len(t.Panels))
	type span struct {
		id       string
		from, to float64
	}
	var spans []span

	for i, p := range t.Panels {
		if p.ID == "" {
			return fmt.Errorf("overlay: panel %d has no id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("overlay: duplicate panel id %q", p.ID)
		}
		seen[p.ID] = true

		if len(p.Breakpoints) < 2 {
			return fmt.Errorf("overlay: panel %q needs at least two breakpoints", p.ID)
		}
		for j, bp := range p.Breakpoints {
			if bp.At < 0 || bp.At > 1 {
				return fmt.Errorf("overlay: panel %q breakpoint %d at %v outside [0, 1]", p.ID, j, bp.At)
			}
			if bp.Opacity < 0 || bp.Opacity > 1 {
				return fmt.Errorf("overlay: panel %q breakpoint %d opacity %v outside [0, 1]", p.ID, j, bp.Opacity)
			}
			if j > 0 && !(bp.At > p.Breakpoints[j-1].At) {
				return fmt.Errorf("overlay: panel %q breakpoints must increase strictly", p.ID)
			}
		}
		if from, to, ok := p.ActiveRange(); ok {
			spans = append(spans, span{id: p.ID, from: from, to: to})
		}
	}

	if t.CrossFade {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })
	for i := 1; i < len(spans); i++ {
		if spans[i].from < spans[i-1].to {
			return fmt.Errorf("%w: %q and %q", ErrOverlap, spans[i-1].id, spans[i].id)
		}
	}
	return nil
}

// Panel returns the panel with the given id.
func (t *Timeline) Panel(id string) (Panel, bool) {
	for _, p := range t.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return Panel{}, false
}

// Sequencer evaluates every panel of a timeline for a progress value.
type Sequencer struct {
	timeline *Timeline
}

// NewSequencer creates a sequencer over t.
func NewSequencer(t *Timeline) *Sequencer {
	return &Sequencer{timeline: t}
}

// Timeline returns the timeline being sequenced.
func (s *Sequencer) Timeline() *Timeline {
	return s.timeline
}

// Evaluate returns the state of every panel, in timeline order.
func (s *Sequencer) Evaluate(progress float64) []PanelState {
	states := make([]PanelState, len(s.timeline.Panels))
	for i, p := range s.timeline.Panels {
		states[i] = p.State(progress)
	}
	return states
}

// Dominant returns the most opaque visible panel, if any.
func (s *Sequencer) Dominant(progress float64) (PanelState, bool) {
	var best PanelState
	found := false
	for _, st := range s.Evaluate(progress) {
		if st.Opacity > 0 && (!found || st.Opacity > best.Opacity) {
			best, found = st, true
		}
	}
	return best, found
}
