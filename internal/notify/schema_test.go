package notify_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

func compileEventSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "event.schema.json"))
	require.NoError(t, err)
	return s
}

// asJSONValue round-trips the event through encoding/json, which is the
// form the schema validator expects.
func asJSONValue(t *testing.T, e notify.Event) any {
	t.Helper()
	b, err := e.JSON()
	require.NoError(t, err)
	var v any
	require.NoError(t, json.Unmarshal(b, &v))
	return v
}

func TestEventSchema_AcceptsEveryEventType(t *testing.T) {
	schema := compileEventSchema(t)
	salmon := &model.Filling{Name: "salmon", Score: 100}

	events := map[string]notify.Event{
		"effect":         notify.EffectEvent(model.EffectWrap, model.V(0.25, -1)),
		"obstacle clear": notify.EffectEvent(model.EffectClear, model.V(0, 0)),
		"score": notify.ScoreEventRecord(notify.ScoreEvent{
			Filling: salmon, Position: model.V(1, 2), MatchCount: 3, Earned: 1600, Combo: 1,
		}),
		"completion":       notify.CompletionEvent(model.V(-1, 0.5)),
		"game over":        notify.GameOverEvent(),
		"preview filling":  notify.PreviewEvent(model.KindFilling, salmon),
		"preview nori":     notify.PreviewEvent(model.KindNori, nil),
		"preview rice":     notify.PreviewEvent(model.KindWhiteRice, nil),
		"effect game over": notify.EffectEvent(model.EffectGameOver, model.V(0, 3.2)),
	}

	for name, e := range events {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, schema.Validate(asJSONValue(t, e)))
		})
	}
}

func TestEventSchema_RejectsMalformed(t *testing.T) {
	schema := compileEventSchema(t)

	cases := map[string]string{
		"unknown type":        `{"type":"teleport","timestamp":1,"x":0,"y":0}`,
		"effect without tag":  `{"type":"effect","timestamp":1,"x":0,"y":0}`,
		"unknown tag":         `{"type":"effect","timestamp":1,"tag":"explode","x":0,"y":0}`,
		"score without combo": `{"type":"score","timestamp":1,"x":0,"y":0,"match_count":2}`,
		"single member match": `{"type":"score","timestamp":1,"x":0,"y":0,"match_count":1,"combo":1}`,
		"missing position":    `{"type":"completion","timestamp":1}`,
		"extra field":         `{"type":"game_over","timestamp":1,"x":0,"y":0,"lives":3}`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			var v any
			require.NoError(t, json.Unmarshal([]byte(doc), &v))
			require.Error(t, schema.Validate(v))
		})
	}
}
