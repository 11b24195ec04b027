package realtime

import "encoding/json"

func marshalEvent(ev outboundEvent) ([]byte, error) {
	return json.Marshal(ev)
}
