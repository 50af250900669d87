package army

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nstehr/cohort/model"
)

func TestMembership(t *testing.T) {
	st := NewState(3)
	assert.True(t, st.Add(4))
	assert.True(t, st.Add(2))
	assert.False(t, st.Add(4), "no duplicates")
	assert.Equal(t, []uint64{4, 2}, st.Members())
	assert.True(t, st.Has(2))

	assert.True(t, st.Remove(4))
	assert.False(t, st.Remove(4))
	assert.Equal(t, 1, st.Len())
}

func TestPruneDropsDead(t *testing.T) {
	st := NewState(3)
	for _, id := range []uint64{1, 2, 3, 4, 5} {
		st.Add(id)
	}
	dead := st.Prune(map[uint64]bool{2: true, 4: true})
	assert.Equal(t, []uint64{1, 3, 5}, dead)
	assert.Equal(t, []uint64{2, 4}, st.Members())
}

func TestRememberDecaysAndFloors(t *testing.T) {
	st := NewState(3)
	st.EnemyStrength = 10

	assert.InDelta(t, 9.0, st.Remember(10, 0.1, 0), 1e-12, "decays by rate*dt")
	assert.InDelta(t, 9.0, st.Remember(10, 0.1, 9), 1e-12, "never below what is visible")
	assert.InDelta(t, 50.0, st.Remember(0.18, 0.1, 50), 1e-12, "new threat is taken at once")
	assert.Equal(t, 0.0, st.Remember(1000, 0.1, 0), "never negative")
}

func TestMusterSeedsEmptyArmy(t *testing.T) {
	st := NewState(3)
	rng := rand.New(rand.NewPCG(3, 4))
	capable := []model.Unit{soldier(7, 0, 0, 10), soldier(8, 50, 0, 10)}

	_, stragglers := st.Muster(capable, 10, rng)
	assert.Empty(t, stragglers)
	assert.Equal(t, 1, st.Len())
	assert.True(t, st.Has(7) || st.Has(8))

	empty := NewState(3)
	empty.Muster(nil, 10, rng)
	assert.Equal(t, 0, empty.Len())
}

func TestMusterJoinsNearbyAndCollectsIdleStragglers(t *testing.T) {
	st := NewState(3)
	st.Add(1)
	st.Add(2)
	far := soldier(4, 40, 0, 10)
	far.Idle = true
	busy := soldier(5, 0, 40, 10)
	capable := []model.Unit{
		soldier(1, 0, 0, 10),
		soldier(2, 2, 0, 10),
		soldier(3, 9, 0, 10), // 8 from the rally point
		far,
		busy,
		soldier(6, 11, 0, 10), // exactly 10 away: not joined
	}

	rally, stragglers := st.Muster(capable, 10, rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, model.Pt(1, 0), rally)
	assert.Equal(t, []uint64{1, 2, 3}, st.Members())
	assert.Len(t, stragglers, 1)
	assert.Equal(t, uint64(4), stragglers[0].ID)
}
