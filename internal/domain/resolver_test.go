package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "covforge.dev/pkg/covforge/internal/model"
)

func TestSelectConstructor_PrefersTrueDefault(t *testing.T) {
	rec := m.TypeRecord{
		Name: "Widget",
		Constructors: []m.ConstructorRecord{
			{Params: []m.ParameterRecord{{Type: "int", Name: "capacity"}}, Access: m.AccessPublic},
			{IsDefault: true, Access: m.AccessPublic},
		},
	}

	ctor, err := SelectConstructor(rec, m.DefaultMaxCtorParams)
	require.NoError(t, err)
	assert.True(t, ctor.IsDefault)
}

func TestSelectConstructor_DefaultParamsBeatPlain(t *testing.T) {
	rec := m.TypeRecord{
		Name: "Widget",
		Constructors: []m.ConstructorRecord{
			{
				Params: []m.ParameterRecord{{Type: "int", Name: "a"}, {Type: "int", Name: "b"}},
				Access: m.AccessPublic,
			},
			{
				Params:           []m.ParameterRecord{{Type: "int", Name: "a"}, {Type: "int", Name: "b"}, {Type: "int", Name: "c"}},
				HasDefaultParams: true,
				Access:           m.AccessPublic,
			},
		},
	}

	ctor, err := SelectConstructor(rec, m.DefaultMaxCtorParams)
	require.NoError(t, err)
	assert.True(t, ctor.HasDefaultParams)
	assert.Len(t, ctor.Params, 3)
}

func TestSelectConstructor_DeletedDefaultFallsBack(t *testing.T) {
	rec := m.TypeRecord{
		Name: "Widget",
		Constructors: []m.ConstructorRecord{
			{IsDefault: true, IsDeleted: true, Access: m.AccessPublic},
			{
				Params: []m.ParameterRecord{{Type: "int", Name: "a"}, {Type: "int", Name: "b"}},
				Access: m.AccessPublic,
			},
		},
	}

	ctor, err := SelectConstructor(rec, m.DefaultMaxCtorParams)
	require.NoError(t, err)
	assert.False(t, ctor.IsDeleted)
	assert.Len(t, ctor.Params, 2)
}

func TestSelectConstructor_FiltersNonPublicAndOversized(t *testing.T) {
	sixParams := make([]m.ParameterRecord, 6)
	for i := range sixParams {
		sixParams[i] = m.ParameterRecord{Type: "int"}
	}

	rec := m.TypeRecord{
		Name: "Widget",
		Constructors: []m.ConstructorRecord{
			{IsDefault: true, Access: m.AccessPrivate},
			{Params: sixParams, Access: m.AccessPublic},
		},
	}

	_, err := SelectConstructor(rec, m.DefaultMaxCtorParams)
	assert.ErrorIs(t, err, m.ErrNoUsableConstructor)
}

func TestSelectConstructor_NoConstructors(t *testing.T) {
	_, err := SelectConstructor(m.TypeRecord{Name: "Widget"}, m.DefaultMaxCtorParams)
	assert.ErrorIs(t, err, m.ErrNoUsableConstructor)
}

func TestSelectConstructor_TieBreaksByFewestParams(t *testing.T) {
	rec := m.TypeRecord{
		Name: "Widget",
		Constructors: []m.ConstructorRecord{
			{
				Params: []m.ParameterRecord{{Type: "int"}, {Type: "int"}, {Type: "int"}},
				Access: m.AccessPublic,
			},
			{
				Params: []m.ParameterRecord{{Type: "int"}},
				Access: m.AccessPublic,
			},
		},
	}

	ctor, err := SelectConstructor(rec, m.DefaultMaxCtorParams)
	require.NoError(t, err)
	assert.Len(t, ctor.Params, 1)
}

func TestSelectConstructor_Deterministic(t *testing.T) {
	rec := m.TypeRecord{
		Name: "Widget",
		Constructors: []m.ConstructorRecord{
			{Params: []m.ParameterRecord{{Type: "int", Name: "a"}}, Access: m.AccessPublic},
			{Params: []m.ParameterRecord{{Type: "double", Name: "b"}}, Access: m.AccessPublic},
		},
	}

	first, err := SelectConstructor(rec, m.DefaultMaxCtorParams)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := SelectConstructor(rec, m.DefaultMaxCtorParams)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
