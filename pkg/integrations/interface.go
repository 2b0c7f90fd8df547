package integrations

import (
	"io"

	"github.com/kerbaras/rnaexport/pkg/data"
)

// Saver stores a finished export and returns where it ended up
type Saver interface {
	Save(handle data.JobHandle, payload io.Reader) (string, error)
}
