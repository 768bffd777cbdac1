package notify

import (
	"encoding/json"
	"time"

	"github.com/udisondev/onigiri/internal/model"
)

// EventType discriminates Event records.
type EventType string

const (
	EventEffect     EventType = "effect"
	EventScore      EventType = "score"
	EventCompletion EventType = "completion"
	EventGameOver   EventType = "game_over"
	EventPreview    EventType = "preview"
)

// Event is the flat wire/journal form of a Notifier call.
// The JSON shape is described by schemas/event.schema.json.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  int64     `json:"timestamp"`
	Tag        string    `json:"tag,omitempty"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Filling    string    `json:"filling,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	MatchCount int       `json:"match_count,omitempty"`
	Earned     int       `json:"earned,omitempty"`
	Combo      int       `json:"combo,omitempty"`
}

// JSON encodes the event.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

func now() int64 {
	return time.Now().UnixMilli()
}

// EffectEvent builds the Event for an Effect call.
func EffectEvent(tag model.EffectTag, pos model.Vec2) Event {
	return Event{Type: EventEffect, Timestamp: now(), Tag: string(tag), X: pos.X, Y: pos.Y}
}

// ScoreEventRecord builds the Event for a Score call.
func ScoreEventRecord(ev ScoreEvent) Event {
	return Event{
		Type:       EventScore,
		Timestamp:  now(),
		X:          ev.Position.X,
		Y:          ev.Position.Y,
		Filling:    model.FillingName(ev.Filling),
		MatchCount: ev.MatchCount,
		Earned:     ev.Earned,
		Combo:      ev.Combo,
	}
}

// CompletionEvent builds the Event for a Completion call.
func CompletionEvent(pos model.Vec2) Event {
	return Event{Type: EventCompletion, Timestamp: now(), X: pos.X, Y: pos.Y}
}

// GameOverEvent builds the Event for a GameOver call.
func GameOverEvent() Event {
	return Event{Type: EventGameOver, Timestamp: now()}
}

// PreviewEvent builds the Event for a Preview call.
func PreviewEvent(kind model.Kind, filling *model.Filling) Event {
	return Event{Type: EventPreview, Timestamp: now(), Kind: kind.String(), Filling: model.FillingName(filling)}
}

// Sink adapts a func(Event) into a Notifier.
type Sink func(Event)

func (s Sink) Effect(tag model.EffectTag, pos model.Vec2) { s(EffectEvent(tag, pos)) }
func (s Sink) Score(ev ScoreEvent) { s(ScoreEventRecord(ev)) }
func (s Sink) Completion(pos model.Vec2) { s(CompletionEvent(pos)) }
func (s Sink) GameOver() { s(GameOverEvent()) }
func (s Sink) Preview(kind model.Kind, filling *model.Filling) { s(PreviewEvent(kind, filling)) }
