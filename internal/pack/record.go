// Package pack discovers Python scripts in a directory, parses their
// magic comments, and encodes them into records ready for embedding
// into the host document.
package pack

import "encoding/base64"

// Record is the per-script unit serialized into the output document and
// consumed by the browser-side loader. Field names are the embedded data
// contract; changing them breaks every document already built.
type Record struct {
	Name           string   `json:"name"`
	ContentEncoded string   `json:"content_encoded"`
	RequiredInputs []string `json:"required_inputs"`
	DerivedInputs  []string `json:"derived_inputs"`
}

// EncodeContent encodes raw script bytes for transport inside a JSON
// string literal. The browser decodes it with atob, which expects
// standard base64.
func EncodeContent(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeContent reverses EncodeContent. DecodeContent(EncodeContent(x))
// returns x for all inputs.
func DecodeContent(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(encoded)
}
