package notify

import "github.com/udisondev/onigiri/internal/model"

// Scoreboard keeps the cumulative totals of a session.
// Score events are trusted as-is: the collaborator owns the total.
type Scoreboard struct {
	Nop

	total       int
	matches     int
	completions int
	bestCombo   int
	gameOver    bool
	shipped     map[string]int
}

// NewScoreboard creates an empty scoreboard.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{shipped: make(map[string]int)}
}

func (s *Scoreboard) Score(ev ScoreEvent) {
	s.total += ev.Earned
	s.matches++
	if ev.Combo > s.bestCombo {
		s.bestCombo = ev.Combo
	}
	s.shipped[model.FillingName(ev.Filling)] += ev.MatchCount
}

func (s *Scoreboard) Completion(model.Vec2) {
	s.completions++
}

func (s *Scoreboard) GameOver() {
	s.gameOver = true
}

func (s *Scoreboard) Total() int { return s.total }
func (s *Scoreboard) Matches() int { return s.matches }
func (s *Scoreboard) Completions() int { return s.completions }
func (s *Scoreboard) BestCombo() int { return s.bestCombo }
func (s *Scoreboard) IsGameOver() bool { return s.gameOver }

// Shipped returns how many items of a filling were cleared by matches.
func (s *Scoreboard) Shipped(filling string) int {
	return s.shipped[filling]
}
