package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/appseeds/api"
	"github.com/agentic-research/appseeds/internal/dataset"
)

type recordView struct {
	Label      string         `json:"label" yaml:"label"`
	ID         any            `json:"id" yaml:"id"`
	Source     string         `json:"source" yaml:"source"`
	Attributes api.Attributes `json:"attributes" yaml:"attributes"`
}

func views(recs dataset.Records) []recordView {
	out := make([]recordView, len(recs))
	for i, r := range recs {
		out[i] = recordView{Label: r.Label, ID: r.ID, Source: r.Source, Attributes: r.Attributes}
	}
	return out
}

// render writes v to w as json or yaml.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
