package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/udisondev/onigiri/internal/notify"
)

// ReadAll decodes every event in the journal at path.
func ReadAll(path string) ([]notify.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	var events []notify.Event
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var ev notify.Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("decoding line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return events, nil
}

// Summary totals a journal.
type Summary struct {
	Events      int
	Score       int
	Matches     int
	Completions int
	BestCombo   int
	GameOver    bool
	Shipped     map[string]int
	Effects     map[string]int
}

// Summarize folds events into a Summary.
func Summarize(events []notify.Event) Summary {
	s := Summary{
		Events:  len(events),
		Shipped: make(map[string]int),
		Effects: make(map[string]int),
	}
	for _, ev := range events {
		switch ev.Type {
		case notify.EventScore:
			s.Score += ev.Earned
			s.Matches++
			s.BestCombo = max(s.BestCombo, ev.Combo)
			s.Shipped[ev.Filling] += ev.MatchCount
		case notify.EventCompletion:
			s.Completions++
		case notify.EventGameOver:
			s.GameOver = true
		case notify.EventEffect:
			s.Effects[ev.Tag]++
		}
	}
	return s
}
