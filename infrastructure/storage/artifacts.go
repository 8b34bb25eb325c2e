package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"storefront_e2e/domain/entities"
	"storefront_e2e/domain/interfaces"

	"github.com/spf13/afero"
)

const (
	screenshotDir  = "screenshots"
	reportFileName = "report.json"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

type artifactStore struct {
	fs      afero.Fs
	baseDir string
}

// NewArtifactStore - creates new artifact storage rooted at baseDir on fs
func NewArtifactStore(fs afero.Fs, baseDir string) (interfaces.ArtifactStore, error) {
	if err := fs.MkdirAll(filepath.Join(baseDir, screenshotDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	return &artifactStore{
		fs:      fs,
		baseDir: baseDir,
	}, nil
}

// SaveScreenshot - saves a PNG screenshot under a sanitised name
func (s *artifactStore) SaveScreenshot(name string, data []byte) (string, error) {
	path := filepath.Join(s.baseDir, screenshotDir, sanitize(name)+".png")
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}
	return path, nil
}

// SaveReport - saves the run report as JSON
func (s *artifactStore) SaveReport(report entities.RunReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	path := filepath.Join(s.baseDir, reportFileName)
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}

// LoadReport - loads the last saved run report
func (s *artifactStore) LoadReport() (entities.RunReport, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.baseDir, reportFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return entities.RunReport{}, fmt.Errorf("no report found in %s", s.baseDir)
		}
		return entities.RunReport{}, err
	}

	var report entities.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return entities.RunReport{}, fmt.Errorf("failed to decode report: %w", err)
	}
	return report, nil
}

// sanitize - turns a scenario label into a file name
func sanitize(name string) string {
	cleaned := strings.Trim(unsafeNameChars.ReplaceAllString(name, "-"), "-")
	if cleaned == "" {
		return "artifact"
	}
	return cleaned
}
