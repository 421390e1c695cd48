package googleads

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entity names used as mutate operation keys.
const (
	EntityCampaignBudget    = "campaign_budget"
	EntityCampaign          = "campaign"
	EntityAdGroup           = "ad_group"
	EntityAdGroupAd         = "ad_group_ad"
	EntityAd                = "ad"
	EntityAdGroupCriterion  = "ad_group_criterion"
	EntityCampaignCriterion = "campaign_criterion"
	EntitySharedSet         = "shared_set"
	EntitySharedCriterion   = "shared_criterion"
	EntityCampaignSharedSet = "campaign_shared_set"
)

// Operation is one entry of a GoogleAdsService mutate request. Exactly one of
// Create, Update or Remove should be set.
type Operation struct {
	Entity     string
	Create     map[string]any
	Update     map[string]any
	UpdateMask []string
	Remove     string
}

// MarshalJSON renders {"<entity>Operation": {...}}.
func (o Operation) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	switch {
	case o.Create != nil:
		body["create"] = o.Create
	case o.Update != nil:
		body["update"] = o.Update
		mask := make([]string, 0, len(o.UpdateMask))
		for _, f := range o.UpdateMask {
			mask = append(mask, CamelPath(f))
		}
		body["updateMask"] = strings.Join(mask, ",")
	case o.Remove != "":
		body["remove"] = o.Remove
	default:
		return nil, fmt.Errorf("googleads: empty %s operation", o.Entity)
	}
	return json.Marshal(map[string]any{camel(o.Entity) + "Operation": body})
}

// ResourceName builds "customers/{cid}/{collection}/{id}".
func ResourceName(customerID, collection, id string) string {
	return fmt.Sprintf("customers/%s/%s/%s", customerID, collection, id)
}

// CompositeResourceName builds "customers/{cid}/{collection}/{a}~{b}".
func CompositeResourceName(customerID, collection, a, b string) string {
	return fmt.Sprintf("customers/%s/%s/%s~%s", customerID, collection, a, b)
}

// IDFromResourceName returns the trailing id of a resource name.
func IDFromResourceName(rn string) string {
	if i := strings.LastIndex(rn, "/"); i >= 0 {
		rn = rn[i+1:]
	}
	if i := strings.LastIndex(rn, "~"); i >= 0 {
		rn = rn[i+1:]
	}
	return rn
}
