package interfaces

import "storefront_e2e/domain/entities"

// ArtifactStore persists diagnostics produced by a run
type ArtifactStore interface {
	// SaveScreenshot stores a screenshot and returns where it was written
	SaveScreenshot(name string, data []byte) (string, error)

	// SaveReport stores the run report
	SaveReport(report entities.RunReport) (string, error)

	// LoadReport loads the last stored run report
	LoadReport() (entities.RunReport, error)
}
