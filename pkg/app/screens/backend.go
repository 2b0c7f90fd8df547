package screens

import (
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/kerbaras/rnaexport/pkg/services"
)

// Backend is what the screens need from the export controller
type Backend interface {
	NewExporter() *services.Exporter
	NewRequest(query string, dataType data.DataType) data.ExportRequest
	ListJobs() ([]*data.Job, error)
	DeleteJob(id string) error
}

// Define shared message for screen switching
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

// startExport asks the root screen to begin a new export
type startExport struct {
	query    string
	dataType data.DataType
}
