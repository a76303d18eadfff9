package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "covforge.dev/pkg/covforge/internal/model"
)

func widgetRecord() m.TypeRecord {
	return m.TypeRecord{
		Name:       "Widget",
		HeaderFile: "include/Widget.h",
		Constructors: []m.ConstructorRecord{
			{IsDefault: true, Access: m.AccessPublic},
		},
		Methods: []m.MethodRecord{
			{Name: "push", ReturnType: "void", Params: []m.ParameterRecord{{Type: "int", Name: "value"}}, Access: m.AccessPublic},
			{Name: "count", ReturnType: "int", IsConst: true, Access: m.AccessPublic},
			{Name: "clamp", ReturnType: "int", IsStatic: true, Access: m.AccessPublic, Params: []m.ParameterRecord{
				{Type: "int", Name: "value"}, {Type: "int", Name: "low"}, {Type: "int", Name: "high"},
			}},
			{Name: "rebalance", ReturnType: "void", Access: m.AccessProtected},
			{Name: "~Widget", IsDestructor: true, Access: m.AccessPublic},
			{Name: "operator==", ReturnType: "bool", Access: m.AccessPublic},
		},
	}
}

func synthCfg() m.EngineConfig {
	return m.EngineConfig{}.Normalize()
}

func projectOf(types ...m.TypeRecord) m.ProjectModel {
	return m.ProjectModel{Types: types}
}

func scenarioIDs(scs []m.TestScenario) []string {
	ids := make([]string, 0, len(scs))
	for _, sc := range scs {
		ids = append(ids, sc.ID)
	}

	return ids
}

func TestSynthesize_SmokeCoversEligibleMethodsOnly(t *testing.T) {
	s := NewSynthesizer(synthCfg())

	scs, err := s.Synthesize(context.Background(), projectOf(widgetRecord()), nil, m.KindSmoke)
	require.NoError(t, err)

	ids := scenarioIDs(scs)
	assert.Contains(t, ids, "Widget_push")
	assert.Contains(t, ids, "Widget_count")
	assert.NotContains(t, ids, "Widget_rebalance")

	for _, sc := range scs {
		assert.NotContains(t, sc.ID, "operator")
		assert.NotEqual(t, "~Widget", sc.Target.MethodName)
	}
}

func TestSynthesize_FirstSmokePassEmitsConstructorScenario(t *testing.T) {
	s := NewSynthesizer(synthCfg())

	scs, err := s.Synthesize(context.Background(), projectOf(widgetRecord()), nil, m.KindSmoke)
	require.NoError(t, err)

	assert.Contains(t, scenarioIDs(scs), "Widget_Widget_Constructor")
}

func TestSynthesize_TargetedPassSkipsConstructorScenario(t *testing.T) {
	s := NewSynthesizer(synthCfg())
	targets := []m.Target{{TypeName: "Widget", MethodName: "push"}}

	scs, err := s.Synthesize(context.Background(), projectOf(widgetRecord()), targets, m.KindSmoke)
	require.NoError(t, err)

	require.Len(t, scs, 1)
	assert.Equal(t, "Widget_push", scs[0].ID)
}

func TestSynthesize_StaticMethodOverridesKind(t *testing.T) {
	s := NewSynthesizer(synthCfg())
	targets := []m.Target{{TypeName: "Widget", MethodName: "clamp"}}

	scs, err := s.Synthesize(context.Background(), projectOf(widgetRecord()), targets, m.KindMultiInvocation)
	require.NoError(t, err)

	require.Len(t, scs, 1)
	assert.Equal(t, m.KindStatic, scs[0].Kind)
	assert.Equal(t, "Widget_clamp_Static", scs[0].ID)
	assert.Contains(t, scs[0].Body, "Widget::clamp(")
}

func TestSynthesize_BoundaryRequiresAggregateParam(t *testing.T) {
	s := NewSynthesizer(synthCfg())
	targets := []m.Target{{TypeName: "Widget", MethodName: "push"}}

	scs, err := s.Synthesize(context.Background(), projectOf(widgetRecord()), targets, m.KindBoundary)
	require.NoError(t, err)

	assert.Empty(t, scs)
}

func TestSynthesize_BoundaryEmittedForAggregateParam(t *testing.T) {
	rec := widgetRecord()
	rec.Methods = append(rec.Methods, m.MethodRecord{
		Name:       "average",
		ReturnType: "double",
		Params:     []m.ParameterRecord{{Type: "const SensorData&", Name: "data"}},
		Access:     m.AccessPublic,
	})
	sensor := m.TypeRecord{
		Name:     "SensorData",
		IsStruct: true,
		Fields:   []m.FieldRecord{{Type: "double", Name: "reading", Access: m.AccessPublic}},
	}

	s := NewSynthesizer(synthCfg())
	targets := []m.Target{{TypeName: "Widget", MethodName: "average"}}

	scs, err := s.Synthesize(context.Background(), projectOf(rec, sensor), targets, m.KindBoundary)
	require.NoError(t, err)

	require.Len(t, scs, 1)
	assert.Equal(t, "Widget_average_Boundary", scs[0].ID)
	assert.Contains(t, scs[0].Body, "data.reading = 1e6;")
}

func TestSynthesize_AbstractTypeKeepsStaticMethodsOnly(t *testing.T) {
	rec := m.TypeRecord{
		Name:       "Shape",
		IsAbstract: true,
		Methods: []m.MethodRecord{
			{Name: "area", ReturnType: "double", Access: m.AccessPublic},
			{Name: "unitCircleArea", ReturnType: "double", IsStatic: true, Access: m.AccessPublic},
		},
	}

	s := NewSynthesizer(synthCfg())

	scs, err := s.Synthesize(context.Background(), projectOf(rec), nil, m.KindSmoke)
	require.NoError(t, err)

	require.Len(t, scs, 1)
	assert.Equal(t, "Shape_unitCircleArea_Static", scs[0].ID)
}

func TestSynthesize_SkipsRiskyNamesWhenConfigured(t *testing.T) {
	rec := widgetRecord()
	rec.Methods = append(rec.Methods, m.MethodRecord{
		Name: "lockAndSwap", ReturnType: "void", Access: m.AccessPublic,
	})

	cfg := synthCfg()
	cfg.SkipRiskyKinds = true

	scs, err := NewSynthesizer(cfg).Synthesize(context.Background(), projectOf(rec), nil, m.KindSmoke)
	require.NoError(t, err)
	assert.NotContains(t, scenarioIDs(scs), "Widget_lockAndSwap")

	cfg.SkipRiskyKinds = false

	scs, err = NewSynthesizer(cfg).Synthesize(context.Background(), projectOf(rec), nil, m.KindSmoke)
	require.NoError(t, err)
	assert.Contains(t, scenarioIDs(scs), "Widget_lockAndSwap")
}

func TestSynthesize_FreeFunctionEmitted(t *testing.T) {
	model := projectOf(widgetRecord())
	model.Functions = []m.FunctionRecord{{
		Name:       "normalize",
		ReturnType: "double",
		Params:     []m.ParameterRecord{{Type: "double", Name: "value"}},
		HeaderFile: "include/util.h",
	}}

	s := NewSynthesizer(synthCfg())

	scs, err := s.Synthesize(context.Background(), model, nil, m.KindSmoke)
	require.NoError(t, err)

	var free *m.TestScenario

	for i := range scs {
		if scs[i].Kind == m.KindFreeFunction {
			free = &scs[i]
		}
	}

	require.NotNil(t, free)
	assert.Equal(t, "normalize_FreeFunction", free.ID)
	assert.Equal(t, m.Target{MethodName: "normalize"}, free.Target)
	assert.Equal(t, "normalize", free.Target.Key())
	assert.Contains(t, free.Body, `#include "util.h"`)
	assert.Contains(t, free.Body, "normalize(0.0)")
	assert.NotContains(t, free.Body, "obj.")
}

func TestSynthesize_FreeFunctionIgnoresKindEscalation(t *testing.T) {
	model := m.ProjectModel{Functions: []m.FunctionRecord{{
		Name:       "normalize",
		ReturnType: "double",
		Params:     []m.ParameterRecord{{Type: "double", Name: "value"}},
		HeaderFile: "include/util.h",
	}}}

	s := NewSynthesizer(synthCfg())
	targets := []m.Target{{MethodName: "normalize"}}

	scs, err := s.Synthesize(context.Background(), model, targets, m.KindBoundary)
	require.NoError(t, err)

	require.Len(t, scs, 1)
	assert.Equal(t, m.KindFreeFunction, scs[0].Kind)
}

func TestSynthesize_FreeFunctionSkippedOnConstructorPass(t *testing.T) {
	model := m.ProjectModel{Functions: []m.FunctionRecord{{
		Name: "normalize", ReturnType: "double", HeaderFile: "include/util.h",
	}}}

	s := NewSynthesizer(synthCfg())

	scs, err := s.Synthesize(context.Background(), model, nil, m.KindConstructor)
	require.NoError(t, err)
	assert.Empty(t, scs)
}

func TestSynthesize_FreeFunctionRiskyNameSkipped(t *testing.T) {
	model := m.ProjectModel{Functions: []m.FunctionRecord{{
		Name: "joinThreads", ReturnType: "void", HeaderFile: "include/util.h",
	}}}

	cfg := synthCfg()
	cfg.SkipRiskyKinds = true

	scs, err := NewSynthesizer(cfg).Synthesize(context.Background(), model, nil, m.KindSmoke)
	require.NoError(t, err)
	assert.Empty(t, scs)
}

func TestSynthesize_OverloadIDsDisambiguated(t *testing.T) {
	rec := widgetRecord()
	rec.Methods = append(rec.Methods, m.MethodRecord{
		Name: "push", ReturnType: "void", Access: m.AccessPublic,
		Params: []m.ParameterRecord{{Type: "double", Name: "value"}},
	})

	s := NewSynthesizer(synthCfg())
	targets := []m.Target{{TypeName: "Widget", MethodName: "push"}}

	scs, err := s.Synthesize(context.Background(), projectOf(rec), targets, m.KindSmoke)
	require.NoError(t, err)

	require.Len(t, scs, 2)
	assert.Equal(t, "Widget_push", scs[0].ID)
	assert.Equal(t, "Widget_push_2", scs[1].ID)
}
