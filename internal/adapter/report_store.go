package adapter

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "covforge.dev/pkg/covforge/internal/model"
)

const (
	scenarioMetadataFile = "scenarios.json"
	passHistoryFile      = "history.yaml"
)

// ReportStore persists the per-scenario metadata and the machine-readable
// pass history under the output root, so every run leaves behind a
// consistent partial artifact set even when it stops early.
type ReportStore interface {
	SaveScenarios(dir m.Path, scenarios []m.TestScenario) error
	LoadScenarios(dir m.Path) ([]m.TestScenario, error)
	SaveHistory(dir m.Path, history []m.PassRecord) error
	LoadHistory(dir m.Path) ([]m.PassRecord, error)
}

// LocalReportStore writes JSON scenario metadata and YAML pass history.
type LocalReportStore struct{}

// NewReportStore constructs a LocalReportStore.
func NewReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveScenarios writes scenario metadata as JSON.
func (s *LocalReportStore) SaveScenarios(dir m.Path, scenarios []m.TestScenario) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(struct {
		Scenarios []m.TestScenario `json:"scenarios"`
	}{Scenarios: scenarios}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(string(dir), scenarioMetadataFile), data, 0o600)
}

// LoadScenarios reads scenario metadata written by SaveScenarios.
func (s *LocalReportStore) LoadScenarios(dir m.Path) ([]m.TestScenario, error) {
	data, err := os.ReadFile(filepath.Join(string(dir), scenarioMetadataFile))
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Scenarios []m.TestScenario `json:"scenarios"`
	}

	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	return wrapper.Scenarios, nil
}

// SaveHistory writes the append-only pass history as YAML.
func (s *LocalReportStore) SaveHistory(dir m.Path, history []m.PassRecord) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(history)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(string(dir), passHistoryFile), data, 0o600)
}

// LoadHistory reads the pass history written by SaveHistory.
func (s *LocalReportStore) LoadHistory(dir m.Path) ([]m.PassRecord, error) {
	data, err := os.ReadFile(filepath.Join(string(dir), passHistoryFile))
	if err != nil {
		return nil, err
	}

	var history []m.PassRecord
	if err := yaml.Unmarshal(data, &history); err != nil {
		return nil, err
	}

	return history, nil
}
