package eval

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Observation is the slice of a game-state snapshot the scorer inspects.
type Observation struct {
	Step     uint64
	Species  []string
	Badges   []string
	Location string
}

// Milestone is a one-time scoring event.
type Milestone struct {
	Kind   string    `json:"kind"` // "pokemon", "badge", "location"
	Name   string    `json:"name"`
	Points float64   `json:"points"`
	Step   uint64    `json:"step"`
	At     time.Time `json:"at"`
}

// Summary is the externally visible scoring report.
type Summary struct {
	TotalScore       float64     `json:"total_score"`
	PokemonCaught    []string    `json:"pokemon_caught"`
	BadgesEarned     []string    `json:"badges_earned"`
	LocationsVisited []string    `json:"locations_visited"`
	Milestones       []Milestone `json:"milestones"`
}

// State is the cumulative scoring state. Credits are one-time: an
// element already in a seen-set scores zero on every later sighting, so
// Update is idempotent and the total never decreases.
type State struct {
	seenSpecies   map[string]bool
	seenBadges    map[string]bool
	seenLocations map[string]bool
	milestones    []Milestone
	total         float64

	now func() time.Time
}

// NewState returns an empty scoring state.
func NewState() *State {
	return &State{
		seenSpecies:   make(map[string]bool),
		seenBadges:    make(map[string]bool),
		seenLocations: make(map[string]bool),
		now:           time.Now,
	}
}

// Update credits any newly seen species, badge, or location in the
// observation and returns the score delta.
func (s *State) Update(obs Observation) float64 {
	var delta float64
	for _, sp := range obs.Species {
		delta += s.credit("pokemon", sp, s.seenSpecies, SpeciesPoints(sp), obs.Step)
	}
	for _, b := range obs.Badges {
		delta += s.credit("badge", b, s.seenBadges, BadgePoints(b), obs.Step)
	}
	if obs.Location != "" && obs.Location != "UNKNOWN" {
		delta += s.credit("location", obs.Location, s.seenLocations, LocationPoints(obs.Location), obs.Step)
	}
	return delta
}

func (s *State) credit(kind, name string, seen map[string]bool, points float64, step uint64) float64 {
	if name == "" || seen[name] {
		return 0
	}
	seen[name] = true
	if points == 0 {
		return 0
	}
	s.total += points
	s.milestones = append(s.milestones, Milestone{
		Kind:   kind,
		Name:   name,
		Points: points,
		Step:   step,
		At:     s.now(),
	})
	return points
}

// Total returns the cumulative score.
func (s *State) Total() float64 { return s.total }

// Summary reports the totals, seen sets, and milestone history.
func (s *State) Summary() Summary {
	return Summary{
		TotalScore:       s.total,
		PokemonCaught:    sortedKeys(s.seenSpecies),
		BadgesEarned:     sortedKeys(s.seenBadges),
		LocationsVisited: sortedKeys(s.seenLocations),
		Milestones:       append([]Milestone(nil), s.milestones...),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render formats the summary as the text written to
// evaluation_summary.txt.
func (s Summary) Render() string {
	var b strings.Builder
	b.WriteString("=== Evaluation Summary ===\n")
	fmt.Fprintf(&b, "Total Unique Pokemon: %d\n", len(s.PokemonCaught))
	fmt.Fprintf(&b, "Total Badges Earned: %d\n", len(s.BadgesEarned))
	fmt.Fprintf(&b, "Total Locations Visited: %d\n", len(s.LocationsVisited))
	fmt.Fprintf(&b, "Total Score: %.2f\n", s.TotalScore)
	if len(s.Milestones) > 0 {
		b.WriteString("\nMilestones:\n")
		for _, m := range s.Milestones {
			fmt.Fprintf(&b, "  step %d: %s %s +%.2f\n", m.Step, m.Kind, m.Name, m.Points)
		}
	}
	return b.String()
}

// Replay feeds recorded observations through Update, rebuilding state
// from a session log before any live update. Crediting is idempotent,
// so replaying rows that were already scored cannot double-count.
func (s *State) Replay(history []Observation) {
	for _, obs := range history {
		s.Update(obs)
	}
}
