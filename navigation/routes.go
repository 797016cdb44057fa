package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrRouteNotFound is returned when no route is mapped to a path.
var ErrRouteNotFound = errors.New("navigation: route not found")

// ErrMissingParam is returned when an action path placeholder has no value.
var ErrMissingParam = errors.New("navigation: missing path parameter")

// Subsystem groups routes by the backend they operate on.
type Subsystem string

const (
	SubsystemShared    Subsystem = "shared"
	SubsystemOpenShift Subsystem = "ose"
	SubsystemGluster   Subsystem = "gluster"
	SubsystemDDC       Subsystem = "ddc"
	SubsystemAWS       Subsystem = "aws"
)

// Feature names a backend capability that can be switched off.
type Feature string

const (
	FeatureNone    Feature = ""
	FeatureGluster Feature = "gluster"
	FeatureDDC     Feature = "ddc"
)

// FeatureToggles is the backend's GET /config payload.
type FeatureToggles struct {
	Gluster bool `json:"gluster"`
	DDC     bool `json:"ddc"`
}

// Enabled reports whether f is switched on. FeatureNone is always enabled.
func (t FeatureToggles) Enabled(f Feature) bool {
	switch f {
	case FeatureGluster:
		return t.Gluster
	case FeatureDDC:
		return t.DDC
	default:
		return true
	}
}

// Action is the backend call a view issues when submitted.
type Action struct {
	Method string
	// APIPath may contain ":name" placeholders filled by Resolve.
	APIPath string
}

// Resolve substitutes ":name" segments from params (path-escaped).
func (a Action) Resolve(params map[string]string) (string, error) {
	segments := strings.Split(a.APIPath, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		v, ok := params[name]
		if !ok || v == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingParam, name)
		}
		segments[i] = url.PathEscape(v)
	}
	return strings.Join(segments, "/"), nil
}

// Route maps an in-app path to the view that renders it.
type Route struct {
	Path      string
	Component string
	Subsystem Subsystem
	Feature   Feature
	Action    *Action
}

// Table is an ordered, immutable route table.
type Table struct {
	routes []Route
	index  map[string]int
}

// NewTable builds a table. Later duplicates of a path replace earlier ones.
func NewTable(routes ...Route) *Table {
	t := &Table{index: make(map[string]int, len(routes))}
	for _, r := range routes {
		if i, ok := t.index[r.Path]; ok {
			t.routes[i] = r
			continue
		}
		t.index[r.Path] = len(t.routes)
		t.routes = append(t.routes, r)
	}
	return t
}

// Lookup returns the route mapped to path.
func (t *Table) Lookup(path string) (Route, error) {
	if t != nil {
		if i, ok := t.index[path]; ok {
			return t.routes[i], nil
		}
	}
	return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
}

// Routes returns the routes in declaration order.
func (t *Table) Routes() []Route {
	if t == nil {
		return nil
	}
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Filter returns a table without the routes whose feature is switched off.
func (t *Table) Filter(toggles FeatureToggles) *Table {
	kept := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		if toggles.Enabled(r.Feature) {
			kept = append(kept, r)
		}
	}
	return NewTable(kept...)
}

func post(path string) *Action { return &Action{Method: "POST", APIPath: path} }
func get(path string) *Action  { return &Action{Method: "GET", APIPath: path} }

// DefaultRoutes returns the portal's route table.
func DefaultRoutes() *Table {
	return NewTable(
		Route{Path: "/", Component: "Home", Subsystem: SubsystemShared},
		Route{Path: DefaultLoginPath, Component: "Login", Subsystem: SubsystemShared},

		Route{Path: "/ose/editquotas", Component: "EditQuota", Subsystem: SubsystemOpenShift, Action: post("/api/ose/quotas")},
		Route{Path: "/ose/newtestproject", Component: "NewTestProject", Subsystem: SubsystemOpenShift, Action: post("/api/ose/testproject")},
		Route{Path: "/ose/newproject", Component: "NewProject", Subsystem: SubsystemOpenShift, Action: post("/api/ose/project")},
		Route{Path: "/ose/adminlist", Component: "AdminList", Subsystem: SubsystemOpenShift, Action: get("/api/ose/project/:project/admins")},
		Route{Path: "/ose/newserviceaccount", Component: "NewServiceAccount", Subsystem: SubsystemOpenShift, Action: post("/api/ose/serviceaccount")},
		Route{Path: "/ose/updatebilling", Component: "UpdateBilling", Subsystem: SubsystemOpenShift, Action: post("/api/ose/billing")},

		Route{Path: "/gluster/newvolume", Component: "NewVolume", Subsystem: SubsystemGluster, Feature: FeatureGluster, Action: post("/api/gluster/volume")},
		Route{Path: "/gluster/fixvolume", Component: "FixVolume", Subsystem: SubsystemGluster, Feature: FeatureGluster, Action: post("/api/gluster/volume/fix")},
		Route{Path: "/gluster/growvolume", Component: "GrowVolume", Subsystem: SubsystemGluster, Feature: FeatureGluster, Action: post("/api/gluster/volume/grow")},

		Route{Path: "/ddc/billing", Component: "DDCBilling", Subsystem: SubsystemDDC, Feature: FeatureDDC, Action: get("/api/ddc/billing")},

		Route{Path: "/aws/lists3buckets", Component: "ListS3Buckets", Subsystem: SubsystemAWS, Action: get("/api/aws/s3")},
		Route{Path: "/aws/news3bucket", Component: "NewS3Bucket", Subsystem: SubsystemAWS, Action: post("/api/aws/s3")},
	)
}
