package handler

const (
	// RootPath is the root path of the route group.
	RootPath = "/"

	// APIPath is the prefix for all JSON API routes.
	APIPath = "/api"

	// AdminPath is the prefix for permission-gated back-office routes.
	AdminPath = APIPath + "/admin"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
