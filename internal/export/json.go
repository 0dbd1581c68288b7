// Package export writes stored runs out as JSON documents and PNG charts.
package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/latctl/internal/sim"
	"github.com/san-kum/latctl/internal/storage"
)

type ExportData struct {
	Run    storage.RunMetadata `json:"run"`
	Cycles []sim.Cycle         `json:"cycles"`
}

// JSON writes the run metadata and every cycle as one indented document.
func JSON(w io.Writer, meta storage.RunMetadata, cycles []sim.Cycle) error {
	data := ExportData{
		Run:    meta,
		Cycles: cycles,
	}
	if data.Cycles == nil {
		data.Cycles = []sim.Cycle{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
