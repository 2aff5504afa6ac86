package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, StateNoApplication.CanTransition(StateQueued))
	assert.True(t, StateQueued.CanTransition(StateBatched))
	assert.True(t, StateBatched.CanTransition(StateDecided))
	assert.True(t, StateDecided.CanTransition(StateFinalized))

	// Return-to-supervisor re-opens any post-submission state.
	assert.True(t, StateBatched.CanTransition(StateQueued))
	assert.True(t, StateFinalized.CanTransition(StateQueued))

	assert.False(t, StateNoApplication.CanTransition(StateBatched))
	assert.False(t, StateQueued.CanTransition(StateFinalized))
	assert.False(t, StateFinalized.CanTransition(StateBatched))
}

func TestSupervisorAssigned(t *testing.T) {
	var inst Institution
	assert.False(t, inst.SupervisorAssigned())

	id := int64(3)
	inst.SupervisorID = &id
	assert.True(t, inst.SupervisorAssigned())
}
