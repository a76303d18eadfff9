package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "covforge.dev/pkg/covforge/internal/model"
)

type fakeGenClient struct {
	reply   string
	err     error
	prompts []string
}

func (c *fakeGenClient) Generate(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)

	return c.reply, c.err
}

func TestGenerativeSynthesize_AppendsGeneratedScenarios(t *testing.T) {
	client := &fakeGenClient{reply: "TEST(Widget_push, Generated) { SUCCEED(); }"}
	s := NewGenerativeSynthesizer(NewSynthesizer(synthCfg()), client)

	targets := []m.Target{{TypeName: "Widget", MethodName: "push"}}

	scs, err := s.Synthesize(context.Background(), projectOf(widgetRecord()), targets, m.KindSmoke)
	require.NoError(t, err)

	require.Len(t, scs, 2)
	assert.Equal(t, "Widget_push", scs[0].ID)
	assert.Equal(t, m.KindSmoke, scs[0].Kind)
	assert.Equal(t, "Widget_push_Generated", scs[1].ID)
	assert.Equal(t, m.KindGenerated, scs[1].Kind)
	assert.Equal(t, client.reply, scs[1].Body)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Widget::push")
	assert.Contains(t, client.prompts[0], "TEST(Widget_push, Generated)")
}

func TestGenerativeSynthesize_BackendFailureKeepsDeterministic(t *testing.T) {
	client := &fakeGenClient{err: errors.New("connection refused")}
	s := NewGenerativeSynthesizer(NewSynthesizer(synthCfg()), client)

	targets := []m.Target{{TypeName: "Widget", MethodName: "push"}}

	scs, err := s.Synthesize(context.Background(), projectOf(widgetRecord()), targets, m.KindSmoke)
	require.NoError(t, err)

	require.Len(t, scs, 1)
	assert.Equal(t, "Widget_push", scs[0].ID)
}

func TestGenerativeSynthesize_SkipsNonPublicAndDestructors(t *testing.T) {
	client := &fakeGenClient{reply: "TEST(X, Generated) { SUCCEED(); }"}
	s := NewGenerativeSynthesizer(NewSynthesizer(synthCfg()), client)

	scs, err := s.Synthesize(context.Background(), projectOf(widgetRecord()), nil, m.KindSmoke)
	require.NoError(t, err)
	require.NotEmpty(t, scs)

	for _, prompt := range client.prompts {
		assert.NotContains(t, prompt, "rebalance")
		assert.NotContains(t, prompt, "~Widget")
	}
}

func TestGenerativeSynthesize_CoversFreeFunctions(t *testing.T) {
	client := &fakeGenClient{reply: "TEST(normalize, Generated) { SUCCEED(); }"}
	s := NewGenerativeSynthesizer(NewSynthesizer(synthCfg()), client)

	model := m.ProjectModel{Functions: []m.FunctionRecord{{
		Name:       "normalize",
		ReturnType: "double",
		Params:     []m.ParameterRecord{{Type: "double", Name: "value"}},
		HeaderFile: "include/util.h",
	}}}
	targets := []m.Target{{MethodName: "normalize"}}

	scs, err := s.Synthesize(context.Background(), model, targets, m.KindSmoke)
	require.NoError(t, err)

	require.Len(t, scs, 2)
	assert.Equal(t, "normalize_FreeFunction", scs[0].ID)
	assert.Equal(t, "normalize_Generated", scs[1].ID)
	assert.Equal(t, m.KindGenerated, scs[1].Kind)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "C++ function normalize")
	assert.Contains(t, client.prompts[0], "TEST(normalize, Generated)")
	assert.NotContains(t, client.prompts[0], "::")
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "TEST(A, B) {}", "TEST(A, B) {}"},
		{"fenced", "```cpp\nTEST(A, B) {}\n```", "TEST(A, B) {}"},
		{"fenced no language", "```\nTEST(A, B) {}\n```", "TEST(A, B) {}"},
		{"unclosed fence", "```cpp\nTEST(A, B) {}", "TEST(A, B) {}"},
		{"surrounding whitespace", "  \nTEST(A, B) {}\n", "TEST(A, B) {}"},
		{"bare fence", "```", "```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}
