package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

const defaultAPIVersion = "v1"

// Route describes one mounted endpoint
type Route struct {
	Feature string
	Method  string
	Path    string
}

// Router mounts feature groups under /api/{version}
type Router struct {
	engine     *gin.Engine
	apiVersion string
	features   []*FeatureGroup
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the API prefix. Empty keeps v1.
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		if version != "" {
			r.apiVersion = version
		}
	}
}

// NewRouter creates a Router on engine
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: defaultAPIVersion,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prefix returns the versioned API prefix, e.g. /api/v1
func (r *Router) Prefix() string {
	return "/api/" + r.apiVersion
}

// Register queues feature groups; nothing is mounted until Setup.
func (r *Router) Register(groups ...*FeatureGroup) *Router {
	r.features = append(r.features, groups...)
	return r
}

// Setup mounts every registered group and returns the resulting routes in
// registration order.
func (r *Router) Setup() []Route {
	api := r.engine.Group(r.Prefix())
	var mounted []Route
	for _, g := range r.features {
		mounted = append(mounted, g.mount(api)...)
	}
	return mounted
}

// FeatureGroup holds the endpoints of one feature (conversion, whatsapp,
// transcription, system) and the middleware that applies only to them.
type FeatureGroup struct {
	feature    string
	prefix     string
	middleware []gin.HandlerFunc
	endpoints  []endpoint
}

type endpoint struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewFeatureGroup creates a group. An empty prefix mounts the endpoints
// directly on the API prefix, which is how the legacy upload paths are served.
func NewFeatureGroup(feature, prefix string) *FeatureGroup {
	return &FeatureGroup{feature: feature, prefix: prefix}
}

// Use adds middleware run before every endpoint of the group
func (g *FeatureGroup) Use(mw ...gin.HandlerFunc) *FeatureGroup {
	g.middleware = append(g.middleware, mw...)
	return g
}

// GET adds a GET endpoint
func (g *FeatureGroup) GET(relative string, handlers ...gin.HandlerFunc) *FeatureGroup {
	return g.add(http.MethodGet, relative, handlers)
}

// POST adds a POST endpoint
func (g *FeatureGroup) POST(relative string, handlers ...gin.HandlerFunc) *FeatureGroup {
	return g.add(http.MethodPost, relative, handlers)
}

// Feature returns the feature label of the group
func (g *FeatureGroup) Feature() string {
	return g.feature
}

func (g *FeatureGroup) add(method, relative string, handlers []gin.HandlerFunc) *FeatureGroup {
	g.endpoints = append(g.endpoints, endpoint{method: method, path: relative, handlers: handlers})
	return g
}

func (g *FeatureGroup) mount(api *gin.RouterGroup) []Route {
	group := api.Group(g.prefix, g.middleware...)
	routes := make([]Route, 0, len(g.endpoints))
	for _, e := range g.endpoints {
		group.Handle(e.method, e.path, e.handlers...)
		routes = append(routes, Route{
			Feature: g.feature,
			Method:  e.method,
			Path:    path.Join(group.BasePath(), e.path),
		})
	}
	return routes
}
