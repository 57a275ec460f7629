package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryManagerStateTransitions(t *testing.T) {
	m := NewMemoryManager()
	const user = "79001234567"

	assert.Equal(t, StateIdle, m.GetState(user))
	assert.False(t, m.InProgress(user))

	m.SetState(user, State("waiting_name"))
	assert.Equal(t, State("waiting_name"), m.GetState(user))
	assert.True(t, m.HasState(user))
	assert.True(t, m.InProgress(user))

	m.ClearState(user)
	assert.Equal(t, StateIdle, m.GetState(user))
	assert.False(t, m.HasState(user))
}

func TestMemoryManagerTempData(t *testing.T) {
	m := NewMemoryManager()
	const user = "79001234567"

	m.SetTemp(user, "activity_id", int64(5))
	m.SetTemp(user, "work_date", "2026-08-14")

	id, ok := m.GetTempInt64(user, "activity_id")
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)

	date, ok := m.GetTempString(user, "work_date")
	assert.True(t, ok)
	assert.Equal(t, "2026-08-14", date)

	_, ok = m.GetTemp(user, "missing")
	assert.False(t, ok)

	m.ClearTemp(user, "activity_id")
	_, ok = m.GetTemp(user, "activity_id")
	assert.False(t, ok)
}

func TestMemoryManagerClearRemovesSession(t *testing.T) {
	m := NewMemoryManager()
	const user = "79001234567"

	m.SetState(user, State("pick_hours"))
	m.SetTemp(user, "location_id", int64(2))
	m.Clear(user)

	assert.Equal(t, StateIdle, m.GetState(user))
	_, ok := m.GetTemp(user, "location_id")
	assert.False(t, ok)
}

func TestMemoryManagerGetReturnsDetachedCopy(t *testing.T) {
	m := NewMemoryManager()
	const user = "79001234567"

	m.SetState(user, State("pick_hours"))
	m.SetTemp(user, "location", "Северное")

	sess := m.Get(user)
	sess.State = State("tampered")
	sess.TempData["location"] = "подмена"

	assert.Equal(t, State("pick_hours"), m.GetState(user))
	loc, ok := m.GetTempString(user, "location")
	assert.True(t, ok)
	assert.Equal(t, "Северное", loc)
}

func TestMemoryManagerIsolatesUsers(t *testing.T) {
	m := NewMemoryManager()

	m.SetState("79001111111", State("pick_date"))
	m.SetTemp("79001111111", "hours", int64(8))

	assert.Equal(t, StateIdle, m.GetState("79002222222"))
	_, ok := m.GetTemp("79002222222", "hours")
	assert.False(t, ok)
}
