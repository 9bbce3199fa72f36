package service

import "encoding/base64"

// encodeLogo stores the uploaded image as base64 on the document, the same
// embeddable form the renderer consumes. The picker-side MIME filter is the
// only validation; undecodable images fail soft at export time instead.
func encodeLogo(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}
