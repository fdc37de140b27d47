package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSameIDSet(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	cases := []struct {
		name string
		x, y []uuid.UUID
		same bool
	}{
		{"identical order", []uuid.UUID{a, b, c}, []uuid.UUID{a, b, c}, true},
		{"reordered", []uuid.UUID{a, b, c}, []uuid.UUID{c, a, b}, true},
		{"empty", nil, nil, true},
		{"missing one", []uuid.UUID{a, b, c}, []uuid.UUID{a, b}, false},
		{"foreign id", []uuid.UUID{a, b}, []uuid.UUID{a, c}, false},
		{"duplicate hides omission", []uuid.UUID{a, b}, []uuid.UUID{a, a}, false},
		{"duplicate in current", []uuid.UUID{a, a}, []uuid.UUID{a, a}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.same, sameIDSet(tc.x, tc.y))
		})
	}
}
