package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta   RunMetadata `json:"meta"`
	Steps  int         `json:"steps"`
	Series *Series     `json:"series"`
}

// ExportJSON writes a run as one self-contained JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, series *Series) error {
	data := ExportData{
		Meta:   *meta,
		Steps:  len(series.Times),
		Series: series,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes a run's series in the stored CSV layout.
func ExportCSV(w io.Writer, series *Series) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(seriesHeader); err != nil {
		return err
	}
	for i := range series.Times {
		row := []string{
			formatFloat(series.Times[i]),
			formatFloat(series.Setpoints[i]),
			formatFloat(series.Measurements[i]),
			formatFloat(series.Controls[i]),
			formatFloat(series.PTerms[i]),
			formatFloat(series.ITerms[i]),
			formatFloat(series.DTerms[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
