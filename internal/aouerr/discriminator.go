package aouerr

import (
	"encoding/json"
	"net/http"
	"strings"
)

// discriminatorPrefix marks a handler error that wants to choose its own
// wire status and message instead of the default 500, analogous to the
// "AouError: {json}" convention the originating server used informally.
const discriminatorPrefix = "aouhttp:"

type discriminatorPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// FromHandlerError classifies an error a handler returned. Errors whose
// message starts with the discriminator prefix followed by a JSON object
// choose their own status and message; anything else becomes a plain 500.
func FromHandlerError(err error) *Error {
	if err == nil {
		return HandlerError(http.StatusInternalServerError, "", nil)
	}

	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, discriminatorPrefix); ok {
		var payload discriminatorPayload
		if jsonErr := json.Unmarshal([]byte(rest), &payload); jsonErr == nil && payload.Status != 0 {
			return HandlerError(payload.Status, payload.Message, err)
		}
	}

	return HandlerError(http.StatusInternalServerError, msg, err)
}
