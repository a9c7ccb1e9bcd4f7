package bilibili

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the base URL for the Bilibili main API
	BaseURL = "https://api.bilibili.com"

	// MyInfoEndpoint returns the authenticated account's own profile
	MyInfoEndpoint = "/x/space/myinfo"

	// FollowingsEndpoint is the paginated followings list
	FollowingsEndpoint = "/x/relation/followings"

	// RelationEndpoint returns the pairwise relation attribute for one target
	RelationEndpoint = "/x/relation"

	// ModifyEndpoint mutates the relation between the account and a target
	ModifyEndpoint = "/x/relation/modify"

	// DefaultPageSize is the page size the followings endpoint serves
	DefaultPageSize = 50
)

// Relation actions accepted by the modify endpoint
const (
	ActFollow   = 1
	ActUnfollow = 2
)

// followingsURL constructs the URL for one page of the followings list
func followingsURL(base string, vmid int64, page int) string {
	params := url.Values{}
	params.Set("vmid", fmt.Sprintf("%d", vmid))
	params.Set("pn", fmt.Sprintf("%d", page))
	params.Set("ps", fmt.Sprintf("%d", DefaultPageSize))
	params.Set("order", "desc")

	return fmt.Sprintf("%s%s?%s", base, FollowingsEndpoint, params.Encode())
}

// relationURL constructs the URL for a pairwise relation query
func relationURL(base string, fid int64) string {
	params := url.Values{}
	params.Set("fid", fmt.Sprintf("%d", fid))

	return fmt.Sprintf("%s%s?%s", base, RelationEndpoint, params.Encode())
}

// myInfoURL constructs the URL for the own-profile query
func myInfoURL(base string) string {
	return base + MyInfoEndpoint
}

// modifyURL constructs the URL for the relation mutation endpoint
func modifyURL(base string) string {
	return base + ModifyEndpoint
}
