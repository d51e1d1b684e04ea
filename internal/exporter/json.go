package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/pretty"

	"bnfcli/pkg/contracts/domain"
)

// WriteJSON encodes the result. Pretty output is indented and key order is
// kept as declared.
func WriteJSON(w io.Writer, res *domain.Result, indent bool) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if indent {
		data = pretty.Pretty(data)
	} else {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}
