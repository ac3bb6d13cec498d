package normalize

import (
	"github.com/Roagert/fluidra-pool/internal/model"
)

// UserPools maps a raw user-pools payload to records keyed by pool id.
func UserPools(raw []byte) map[string]model.UserPool {
	items, err := Items(raw)
	if err != nil {
		return map[string]model.UserPool{}
	}

	out := make(map[string]model.UserPool, len(items))
	for _, item := range items {
		poolID := key(item["poolId"])
		if poolID == "" {
			continue
		}
		out[poolID] = model.UserPool{
			PoolID:            poolID,
			AccessLevel:       item["accessLevel"],
			Permissions:       item["permissions"],
			Role:              str(item["role"]),
			Owner:             item["owner"],
			AccessGrantedDate: str(item["accessGrantedDate"]),
			LastAccessed:      str(item["lastAccessed"]),
		}
	}
	return out
}
