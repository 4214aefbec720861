// Package reporting writes pipeline results to disk: the full result as
// results.json and flat CSV projections of the summary for spreadsheet
// consumption.
package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/olib-ai/bizcon/internal/domain"
)

// WriteReport writes results.json, overall_scores.csv,
// category_scores.csv, and scenario_scores.csv into dir, creating it if
// needed.
func WriteReport(dir string, result domain.PipelineResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, "results.json"), result); err != nil {
		return err
	}
	if err := writeOverallScores(filepath.Join(dir, "overall_scores.csv"), result.Summary); err != nil {
		return err
	}
	if err := writeCategoryScores(filepath.Join(dir, "category_scores.csv"), result.Summary); err != nil {
		return err
	}
	return writeScenarioScores(filepath.Join(dir, "scenario_scores.csv"), result)
}

func writeJSON(path string, result domain.PipelineResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results.json: %w", err)
	}
	return nil
}

func writeOverallScores(path string, summary domain.Summary) error {
	rows := [][]string{{"model", "overall_score"}}
	for _, model := range sortedKeys(summary.OverallScores) {
		rows = append(rows, []string{model, formatScore(summary.OverallScores[model])})
	}
	return writeCSV(path, rows)
}

func writeCategoryScores(path string, summary domain.Summary) error {
	rows := [][]string{{"model", "category", "score"}}
	for _, model := range sortedKeys(summary.CategoryScores) {
		categories := summary.CategoryScores[model]
		for _, category := range sortedKeys(categories) {
			rows = append(rows, []string{model, category, formatScore(categories[category])})
		}
	}
	return writeCSV(path, rows)
}

func writeScenarioScores(path string, result domain.PipelineResult) error {
	names := make(map[string]string, len(result.Scenarios))
	for _, meta := range result.Scenarios {
		names[meta.ID] = meta.Name
	}

	rows := [][]string{{"model", "scenario_id", "scenario_name", "score"}}
	for _, model := range sortedKeys(result.Summary.ScenarioScores) {
		scenarios := result.Summary.ScenarioScores[model]
		for _, scenarioID := range sortedKeys(scenarios) {
			name, ok := names[scenarioID]
			if !ok {
				name = scenarioID
			}
			rows = append(rows, []string{model, scenarioID, name, formatScore(scenarios[scenarioID])})
		}
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
