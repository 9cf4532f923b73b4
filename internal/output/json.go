package output

import (
	"encoding/json"
	"io"

	"github.com/pranshuparmar/ports/pkg/model"
)

// WriteJSON prints v as indented JSON. Nil slices are printed as [].
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func WritePortsJSON(w io.Writer, records []model.PortRecord) error {
	if records == nil {
		records = []model.PortRecord{}
	}
	return WriteJSON(w, records)
}

func WriteWhyJSON(w io.Writer, results []model.WhyResult) error {
	if results == nil {
		results = []model.WhyResult{}
	}
	return WriteJSON(w, results)
}
