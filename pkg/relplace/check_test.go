package relplace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/geom"
	"github.com/matzehuels/relplace/pkg/relplace"
)

func TestCheck(t *testing.T) {
	names := []string{"a", "b", "c"}
	cs := []constraint{{"a", "b", geom.SideRight}, {"b", "c", geom.SideUpper}}

	tests := []struct {
		name   string
		rotate bool
		at     map[string]geom.Point
		ok     bool
	}{
		{"declared shape", false, map[string]geom.Point{"a": geom.Pt(0, 0, 0), "b": geom.Pt(1, 0, 0), "c": geom.Pt(1, 1, 0)}, true},
		{"rotated without rotation", false, map[string]geom.Point{"a": geom.Pt(1, 0, 0), "b": geom.Pt(1, 1, 0), "c": geom.Pt(0, 1, 0)}, false},
		{"rotated with rotation", true, map[string]geom.Point{"a": geom.Pt(1, 0, 0), "b": geom.Pt(1, 1, 0), "c": geom.Pt(0, 1, 0)}, true},
		{"broken shape", true, map[string]geom.Point{"a": geom.Pt(0, 0, 0), "b": geom.Pt(1, 0, 0), "c": geom.Pt(0, 1, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := configure(t, relplace.Config{RotateEnable: tt.rotate}, names, cs...)
			f := uniformFabric(t, 3, 3, names...)
			place(t, f, tt.at)

			err := e.Check(f)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConstraint), "got %v", err)
		})
	}
}

func TestCheckUnplacedMember(t *testing.T) {
	e := configure(t, relplace.Config{}, []string{"a", "b"}, constraint{"a", "b", geom.SideLeft})
	f := uniformFabric(t, 3, 1, "a", "b")
	place(t, f, map[string]geom.Point{"a": geom.Pt(1, 0, 0)})

	err := e.Check(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `block "b" of macro 0 is not placed`)
}

func TestCheckAfterInitialPlace(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	e := relplace.New(relplace.Options{Seed: 9})
	require.NoError(t, e.Configure(relplace.Config{RotateEnable: true}, specs(names,
		constraint{"a", "b", geom.SideRight},
		constraint{"b", "c", geom.SideLower},
		constraint{"c", "d", geom.SideRight})))
	f := uniformFabric(t, 5, 5, names...)
	require.NoError(t, e.InitialPlace(f))
	assert.NoError(t, e.Check(f))
}
