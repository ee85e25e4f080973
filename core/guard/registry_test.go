package guard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stormpath/core/guard"
)

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("rejects authorize without group", func(t *testing.T) {
		t.Parallel()

		reg := guard.NewRegistry()
		err := reg.Register(
			guard.Route{Name: "ok"},
			guard.Route{Name: "bad", Access: guard.Access{Authorize: &guard.Authorization{}}},
		)
		require.ErrorIs(t, err, guard.ErrUnsupportedAuthorization)

		_, ok := reg.Lookup("ok")
		assert.False(t, ok, "a failed batch registers nothing")
	})

	t.Run("rejects empty and duplicate names", func(t *testing.T) {
		t.Parallel()

		reg := guard.NewRegistry()
		require.ErrorIs(t, reg.Register(guard.Route{}), guard.ErrEmptyRouteName)
		require.ErrorIs(t, reg.Register(guard.Route{Name: "a"}, guard.Route{Name: "a"}), guard.ErrDuplicateRoute)

		require.NoError(t, reg.Register(guard.Route{Name: "a"}))
		require.ErrorIs(t, reg.Register(guard.Route{Name: "a"}), guard.ErrDuplicateRoute)
	})

	t.Run("must register panics", func(t *testing.T) {
		t.Parallel()

		reg := guard.NewRegistry()
		assert.Panics(t, func() {
			reg.MustRegister(guard.Route{Name: "x", Access: guard.Access{Authorize: &guard.Authorization{}}})
		})
	})
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	reg := guard.NewRegistry()
	reg.MustRegister(guard.Route{Name: "admin", Access: guard.Access{Authorize: &guard.Authorization{Group: "admins"}}})

	rt, ok := reg.Lookup("admin")
	require.True(t, ok)
	assert.True(t, rt.Access.RequiresAuthentication(), "authorize implies authentication")

	rt, ok = reg.Lookup("elsewhere")
	assert.False(t, ok)
	assert.Equal(t, "elsewhere", rt.Name)
	assert.False(t, rt.Access.RequiresAuthentication())
}

func TestParamsClone(t *testing.T) {
	t.Parallel()

	p := guard.Params{"id": "1"}
	c := p.Clone()
	c["id"] = "2"
	assert.Equal(t, "1", p["id"])
	assert.Nil(t, guard.Params(nil).Clone())
}
