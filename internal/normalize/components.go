package normalize

import (
	"github.com/Roagert/fluidra-pool/internal/model"
)

// Components maps a raw device-components payload to records keyed by the
// string form of the component id. Raw fields are kept verbatim alongside
// the promoted reportedValue and timestamp. A malformed payload yields an
// empty map.
func Components(raw []byte) map[string]model.Component {
	items, err := Items(raw)
	if err != nil {
		return map[string]model.Component{}
	}

	out := make(map[string]model.Component, len(items))
	for _, item := range items {
		if _, present := item["id"]; !present {
			continue
		}
		id := key(item["id"])
		if id == "" {
			continue
		}
		out[id] = component(id, item)
	}
	return out
}

func component(id string, obj map[string]any) model.Component {
	return model.Component{
		ID:            id,
		ReportedValue: obj["reportedValue"],
		Timestamp:     obj["ts"],
		Raw:           obj,
	}
}
