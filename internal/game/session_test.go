package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/udisondev/onigiri/internal/config"
	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/notify"
)

type fakeHost struct {
	attached []uint32
	detached []uint32
	refuse   bool
}

func (h *fakeHost) Attach(it *model.Item) bool {
	if h.refuse {
		return false
	}
	h.attached = append(h.attached, it.ID())
	return true
}

func (h *fakeHost) Detach(itemID uint32) {
	h.detached = append(h.detached, itemID)
}

type SessionSuite struct {
	suite.Suite

	cfg        config.Game
	host       *fakeHost
	recorder   *notify.Recorder
	scoreboard *notify.Scoreboard
	session    *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.cfg = config.Default()
	s.host = &fakeHost{}
	s.recorder = notify.NewRecorder()
	s.scoreboard = notify.NewScoreboard()
	s.session = NewSession(s.cfg, s.host, notify.Multi{s.scoreboard, s.recorder}, rand.New(rand.NewPCG(7, 7)))
}

// place puts a dropped item straight onto the board.
func (s *SessionSuite) place(id uint32, kind model.Kind, state model.State, filling *model.Filling, pos model.Vec2, landed bool) *model.Item {
	it := model.NewItem(id, kind, filling, pos, 0.5)
	it.Release()
	if landed {
		it.Land()
	}
	it.TransitionTo(state, filling)
	s.Require().NoError(s.session.Board().Add(it))
	return it
}

func (s *SessionSuite) catalog(name string) *model.Filling {
	for _, f := range s.cfg.Catalog() {
		if f.Name == name {
			return f
		}
	}
	s.FailNow("no filling " + name)
	return nil
}

func (s *SessionSuite) TestStartSpawnsHeldItem() {
	s.Require().True(s.session.Start())

	held, ok := s.session.Held()
	s.Require().True(ok)
	s.Equal(model.V(0, s.cfg.Container.SpawnY), held.Position())
	s.Equal([]uint32{held.ID()}, s.host.attached)
	s.NotEmpty(s.recorder.OfType(notify.EventPreview))
}

func (s *SessionSuite) TestDropClampsAndSchedulesSpawn() {
	s.Require().True(s.session.Start())

	it, ok := s.session.Drop(10)
	s.Require().True(ok)
	s.InDelta(s.cfg.Container.MaxX, it.Position().X, 1e-9)
	s.True(it.Falling())
	s.Equal(1, s.session.Drops())
	s.Contains(s.recorder.Tags(), "drop")

	timer := s.session.Spawner().Timer()
	s.Require().True(timer.Pending())

	_, ok = s.session.Drop(0)
	s.False(ok, "nothing held")

	s.session.IncrementCombo()
	s.session.IncrementCombo()
	s.session.Tick(timer.DueAt())

	s.Zero(s.session.Combo(), "combo resets when the next item spawns")
	next, ok := s.session.Held()
	s.Require().True(ok)
	s.NotEqual(it.ID(), next.ID())
	s.Len(s.host.attached, 2)
}

func (s *SessionSuite) TestMoveHeld() {
	s.False(s.session.MoveHeld(1), "no held item")

	s.Require().True(s.session.Start())
	s.True(s.session.MoveHeld(-9))
	held, _ := s.session.Held()
	s.InDelta(s.cfg.Container.MinX, held.Position().X, 1e-9)
	s.InDelta(s.cfg.Container.SpawnY, held.Position().Y, 1e-9)
}

func (s *SessionSuite) TestContactLandsAndMerges() {
	white := s.place(100, model.KindWhiteRice, model.StateWhite, nil, model.V(0, 0), false)
	nori := s.place(101, model.KindNori, model.StateNori, nil, model.V(0, 1), false)

	res := s.session.Contact(white.ID(), nori.ID())
	s.Require().True(res.Merged)

	s.Equal([]string{"land", "nori_land", "nori"}, s.recorder.Tags())
	s.True(white.Landed())
	s.Equal(model.StateWithNori, white.State())
	s.True(nori.Merged())

	s.session.Tick(s.cfg.Rules.RemovalDelay - time.Millisecond)
	_, present := s.session.Board().Get(nori.ID())
	s.True(present, "removal is deferred")

	s.session.Tick(time.Millisecond)
	_, present = s.session.Board().Get(nori.ID())
	s.False(present)
	s.Equal([]uint32{nori.ID()}, s.host.detached)
}

func (s *SessionSuite) TestContactUnknownItems() {
	res := s.session.Contact(1, 2)
	s.False(res.Merged)
	s.Empty(s.recorder.Events())
}

func (s *SessionSuite) TestNoriPairLeavesRock() {
	a := s.place(1, model.KindNori, model.StateNori, nil, model.V(-0.5, -3), true)
	b := s.place(2, model.KindNori, model.StateNori, nil, model.V(0.5, -3), true)

	res := s.session.Contact(a.ID(), b.ID())
	s.Require().True(res.Merged)
	s.Require().NotNil(res.Rock)

	rock, ok := s.session.Board().FirstInState(model.StateRock)
	s.Require().True(ok)
	s.Same(res.Rock, rock)
	s.Equal(model.V(0, -3), rock.Position())
	s.Contains(s.host.attached, rock.ID())
}

func (s *SessionSuite) TestMatchScoresAndClearsObstacle() {
	ume := s.catalog("ume")
	a := s.place(1, model.KindWhiteRice, model.StateFillingN, ume, model.V(0, -3), true)
	b := s.place(2, model.KindWhiteRice, model.StateFillingN, ume, model.V(1, -3), true)
	rock := s.place(3, model.KindRock, model.StateRock, nil, model.V(2, -3.5), true)

	res := s.session.Contact(a.ID(), b.ID())
	s.Require().True(res.Merged)
	s.Require().NotNil(res.Match)

	s.Equal(750, res.Match.Earned)
	s.Equal(750, s.scoreboard.Total())
	s.Equal(1, s.session.Combo())
	s.Equal(2, s.scoreboard.Shipped("ume"))

	_, present := s.session.Board().Get(rock.ID())
	s.False(present, "obstacle removed at once")
	s.Equal([]uint32{rock.ID()}, s.host.detached)

	s.session.Tick(s.cfg.Rules.RemovalDelay)
	s.Zero(s.session.Board().Len())
	s.ElementsMatch([]uint32{rock.ID(), a.ID(), b.ID()}, s.host.detached)
}

func (s *SessionSuite) TestSweepCatchesMissedContacts() {
	salmon := s.catalog("salmon")
	white := s.place(1, model.KindWhiteRice, model.StateWhite, nil, model.V(0, -3), true)
	s.place(2, model.KindFilling, model.StateFilling, salmon, model.V(1, -3), true)

	s.session.Tick(s.cfg.Rules.MergeCheckInterval - time.Millisecond)
	s.Equal(model.StateWhite, white.State())

	s.session.Tick(time.Millisecond)
	s.Equal(model.StateFillingO, white.State())
	s.Same(salmon, white.Filling())
}

func (s *SessionSuite) TestSweepMergesTouchingItems() {
	tests := []struct {
		name   string
		offset model.Vec2
		merges int
	}{
		{name: "side by side", offset: model.V(1, 0), merges: 1},
		{name: "stacked", offset: model.V(0, 1), merges: 1},
		{name: "apart", offset: model.V(1.3, 0), merges: 0},
	}

	for i, tt := range tests {
		s.Run(tt.name, func() {
			base := uint32(10 * (i + 1))
			origin := model.V(-1.5, -3.5+float64(i)*10)
			white := s.place(base, model.KindWhiteRice, model.StateWhite, nil, origin, true)
			s.place(base+1, model.KindNori, model.StateNori, nil, origin.Add(tt.offset), true)

			s.Equal(tt.merges, s.session.Sweep())
			if tt.merges > 0 {
				s.Equal(model.StateWithNori, white.State())
			} else {
				s.Equal(model.StateWhite, white.State())
			}
		})
	}
}

func (s *SessionSuite) TestSweepSkipsObstacles() {
	s.place(1, model.KindRock, model.StateRock, nil, model.V(0, -3.5), true)
	s.place(2, model.KindWhiteRice, model.StatePickles, nil, model.V(1, -3.5), true)
	white := s.place(3, model.KindWhiteRice, model.StateWhite, nil, model.V(0.5, -2.6), true)

	s.Zero(s.session.Sweep())
	s.Equal(model.StateWhite, white.State())
}

func (s *SessionSuite) TestSweepIgnoresHeldItems() {
	s.Require().True(s.session.Start())
	held, _ := s.session.Held()
	s.place(50, model.KindWhiteRice, model.StateWhite, nil, held.Position(), true)
	s.place(51, model.KindNori, model.StateNori, nil, held.Position(), true)

	s.Equal(1, s.session.Sweep())
	s.False(held.Merged())
}

func (s *SessionSuite) TestGameOverStopsTheSession() {
	s.place(1, model.KindWhiteRice, model.StateWhite, nil, model.V(0, s.cfg.GameOver.LineY+0.2), true)

	s.session.Tick(s.cfg.GameOver.CheckInterval)
	s.Require().True(s.session.IsGameOver())
	s.False(s.session.Spawner().Enabled())
	s.True(s.scoreboard.IsGameOver())

	_, ok := s.session.Drop(0)
	s.False(ok)

	s.session.Tick(10 * s.cfg.GameOver.CheckInterval)
	s.Len(s.recorder.OfType(notify.EventGameOver), 1)
}

func (s *SessionSuite) TestUpdateBodyAndLand() {
	it := s.place(1, model.KindNori, model.StateNori, nil, model.V(0, 2), false)

	s.True(s.session.UpdateBody(1, model.V(0.5, 1), model.V(0, -3)))
	s.Equal(model.V(0.5, 1), it.Position())
	s.Equal(model.V(0, -3), it.Velocity())
	s.Len(s.session.Board().QueryNearby(model.V(0.5, 1), 0.01), 1)

	s.True(s.session.Land(1))
	s.False(s.session.Land(1))
	s.Equal([]string{"nori_land"}, s.recorder.Tags())

	s.False(s.session.UpdateBody(99, model.Vec2{}, model.Vec2{}))
	s.False(s.session.Land(99))
}

func TestSession_ApplyEvents(t *testing.T) {
	host := &fakeHost{}
	rec := notify.NewRecorder()
	s := NewSession(config.Default(), host, rec, rand.New(rand.NewPCG(1, 1)))
	require.True(t, s.Start())

	require.NoError(t, s.Apply(FeverEvent{On: true}))
	assert.True(t, s.Fever())

	require.NoError(t, s.Apply(MoveEvent{X: 1}))
	require.NoError(t, s.Apply(DropEvent{X: 1}))
	assert.Equal(t, 1, s.Drops())

	require.NoError(t, s.Apply(TickEvent{DT: 100 * time.Millisecond}))
	assert.Equal(t, 100*time.Millisecond, s.Clock())

	require.NoError(t, s.Apply(BodyEvent{ItemID: 1, Position: model.V(1, 0), Velocity: model.V(0, -1)}))
	require.NoError(t, s.Apply(LandEvent{ItemID: 1}))
	require.NoError(t, s.Apply(ContactEvent{A: 1, B: 2}))

	assert.Error(t, s.Apply(nil))
}

func TestSession_HostRefusesFirstSpawn(t *testing.T) {
	s := NewSession(config.Default(), &fakeHost{refuse: true}, nil, rand.New(rand.NewPCG(1, 1)))
	assert.False(t, s.Start())
	assert.Zero(t, s.Board().Len())
}

func TestSession_NegativeTickIgnored(t *testing.T) {
	s := NewSession(config.Default(), &fakeHost{}, nil, rand.New(rand.NewPCG(1, 1)))
	s.Tick(-time.Second)
	assert.Zero(t, s.Clock())
}
