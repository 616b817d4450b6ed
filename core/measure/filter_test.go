package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecVariants(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		kind     FilterKind
		expected string
	}{
		{"empty string", Spec(""), NoFilter, ""},
		{"blank string", Spec("   "), NoFilter, ""},
		{"wildcard", Spec("*"), Wildcard, "*"},
		{"expression", Spec("acc -pres"), Expression, "acc -pres"},
		{"only", Only(Light), Expression, "light"},
		{"only nil", Only(nil), NoFilter, ""},
		{"from expr", FromExpr(Acceleration.WithExclusion(Light)), Expression, "acc -light"},
		{"from empty expr", FromExpr(Expr{}), NoFilter, ""},
		{"zero value", Filter{}, NoFilter, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.filter.Kind())
			assert.Equal(t, tt.expected, tt.filter.String())
		})
	}
}

func TestSplitWildcard(t *testing.T) {
	inc, exc, err := SplitTypes("*")
	require.NoError(t, err)
	assert.Len(t, inc, Default.Len())
	assert.Empty(t, exc)
}

func TestSplitNoFilter(t *testing.T) {
	inc, exc, err := SplitTypes("")
	require.NoError(t, err)
	assert.Empty(t, inc)
	assert.Empty(t, exc)
	assert.NotNil(t, inc)
	assert.NotNil(t, exc)
}

func TestSplitIncludeExclude(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
	}{
		{"string", Spec("acc pres -light")},
		{"algebra", FromExpr(Acceleration.Combine(Pressure).WithExclusion(Light))},
		{"algebra as string", Spec(Acceleration.Combine(Pressure).WithExclusion(Light).String())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc, exc, err := Default.Split(tt.filter)
			require.NoError(t, err)
			assert.True(t, inc.Has(Acceleration))
			assert.True(t, inc.Has(Pressure))
			assert.True(t, exc.Has(Light))
			assert.False(t, inc.Has(Light))
			assert.False(t, exc.Has(Pressure))
			assert.Equal(t, []string{"acc", "pres"}, inc.Abbrevs())
		})
	}
}

func TestSplitExclusionWins(t *testing.T) {
	inc, exc, err := SplitTypes("acc pres -acc")
	require.NoError(t, err)
	assert.Equal(t, []string{"pres"}, inc.Abbrevs())
	assert.Equal(t, []string{"acc"}, exc.Abbrevs())

	inc, exc, err = SplitTypes("* -acc")
	require.NoError(t, err)
	assert.Len(t, inc, Default.Len()-1)
	assert.False(t, inc.Has(Acceleration))
	assert.True(t, exc.Has(Acceleration))
}

func TestSplitOnlyExcluded(t *testing.T) {
	inc, exc, err := Default.Split(FromExpr(Acceleration.Exclude()))
	require.NoError(t, err)
	assert.Empty(t, inc)
	assert.Equal(t, []string{"acc"}, exc.Abbrevs())
}

func TestSplitSingleType(t *testing.T) {
	inc, exc, err := Default.Split(Only(Temperature))
	require.NoError(t, err)
	assert.Equal(t, []string{"temp"}, inc.Abbrevs())
	assert.Empty(t, exc)
}

func TestSplitUnknownType(t *testing.T) {
	tests := []string{"bogus", "acc -bogus", "-", "acc --pres"}
	for _, spec := range tests {
		t.Run(spec, func(t *testing.T) {
			_, _, err := SplitTypes(spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownType)
		})
	}
}

func TestSplitUsesGivenRegistry(t *testing.T) {
	r := NewRegistry()
	foo := r.Get("Foo", "foo")

	inc, _, err := r.Split(Spec("*"))
	require.NoError(t, err)
	assert.Len(t, inc, 1)
	assert.True(t, inc.Has(foo))

	_, _, err = r.Split(Spec("acc"))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestTypeSetNilSafe(t *testing.T) {
	var s TypeSet
	assert.False(t, s.Has(Acceleration))
	assert.False(t, TypeSet{}.Has(nil))
}
