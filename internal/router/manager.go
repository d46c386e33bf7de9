package router

import (
	"encoding/base64"
	"fmt"

	"github.com/ndn-tools/nrd/internal/wire"
)

// buildRegistrationRequest builds the JSON "route_registration" request
// basic_router.cpp sends to the manager for validation, base64-encoding the
// wire-form Name and the raw signature bytes exactly as the original does
// (spec.md §4.5).
func buildRegistrationRequest(routerName wire.Name, requestID, faceID uint64, prefix, signedName wire.Name, sig wire.Signature) []byte {
	message := base64.StdEncoding.EncodeToString(signedName.Bytes())
	signature := base64.StdEncoding.EncodeToString(sig.Value)

	return []byte(fmt.Sprintf(
		`{"name":%q, "type":"request", "id":%d, "action":"route_registration", `+
			`"face_id":%d, "prefix":%q, "message":%q, "key_name":%q, `+
			`"signature_type":%q, "signature":%q}`,
		routerName.String(), requestID, faceID, prefix.String(), message,
		sig.KeyName.String(), fmt.Sprint(sig.Type), signature,
	))
}
