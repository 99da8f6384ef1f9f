package repositories

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestHandleMatchResultError(t *testing.T) {
	r := &postgresMatchResultRepository{}

	assert.NoError(t, r.handleMatchResultError(nil))

	dup := &pq.Error{Code: "23505", Constraint: pairUniqueIndex}
	assert.ErrorIs(t, r.handleMatchResultError(dup), ErrMatchResultConflict)

	otherUnique := &pq.Error{Code: "23505", Constraint: "match_results_pkey"}
	assert.Same(t, otherUnique, r.handleMatchResultError(otherUnique))

	fk := &pq.Error{Code: "23503", Constraint: "match_results_group_id_fkey"}
	assert.ErrorIs(t, r.handleMatchResultError(fk), ErrMatchResultGroupRef)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, r.handleMatchResultError(plain))
}

func TestHandleGroupError(t *testing.T) {
	r := &postgresGroupRepository{}
	assert.ErrorIs(t, r.handleGroupError(&pq.Error{Code: "23503"}), ErrGroupInvalidRef)
	assert.NoError(t, r.handleGroupError(nil))
}
