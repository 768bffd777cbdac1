package model

// EffectTag names an audio/visual cue for the presentation layer.
// The core never plays anything; it only reports the tag and a position.
type EffectTag string

const (
	EffectDrop     EffectTag = "drop"
	EffectLand     EffectTag = "land"
	EffectNoriLand EffectTag = "nori_land"
	EffectNori     EffectTag = "nori"
	EffectFilling  EffectTag = "filling"
	EffectWrap     EffectTag = "wrap"
	EffectPickles  EffectTag = "pickles"
	EffectRock     EffectTag = "rock"
	EffectConsume  EffectTag = "consume"
	EffectCombo    EffectTag = "combo"
	EffectClear    EffectTag = "obstacle_clear"
	EffectGameOver EffectTag = "game_over"
)
