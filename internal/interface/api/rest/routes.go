package rest

const (
	// api
	RouteApi = "/api"

	// shares
	RouteUpload   = RouteApi + "/upload"
	RouteShares   = RouteApi + "/shares"
	RouteShare    = RouteShares + "/:share_id"
	RouteShareAlt = RouteApi + "/share/:share_id"
	RouteMyShares = RouteApi + "/my-shares"
	RouteMyShare  = RouteMyShares + "/:share_id"

	// ops
	RouteHealth  = RouteApi + "/healthz"
	RouteMetrics = RouteApi + "/metrics"
)
