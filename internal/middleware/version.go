package middleware

import (
	"net/http"
	"regexp"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	versionHeader = "X-API-Version"
	versionKey    = "api_version"
)

var versionPrefix = regexp.MustCompile(`^/(v[0-9]+)(/|$)`)

// APIVersion describes one mounted API version
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"` // "active" or "deprecated"
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
}

// Versions tracks the API versions the server mounts
type Versions struct {
	supported map[string]APIVersion
	current   string
}

func NewVersions() *Versions {
	return &Versions{
		supported: map[string]APIVersion{"v1": {Version: "v1", Status: "active"}},
		current:   "v1",
	}
}

// Deprecate marks version as deprecated with an optional sunset date
func (v *Versions) Deprecate(version string, sunset *time.Time) {
	v.supported[version] = APIVersion{Version: version, Status: "deprecated", SunsetDate: sunset}
}

// Group mounts a route group under /<version> that stamps version headers on responses
func (v *Versions) Group(e *echo.Echo, version string, m ...echo.MiddlewareFunc) *echo.Group {
	return e.Group("/"+version, append([]echo.MiddlewareFunc{v.header(version)}, m...)...)
}

func (v *Versions) header(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(versionHeader, version)
			if ver, ok := v.supported[version]; ok && ver.Status == "deprecated" {
				h.Set("X-API-Deprecated", "true")
				if ver.SunsetDate != nil {
					h.Set("X-API-Sunset", ver.SunsetDate.Format(time.RFC3339))
					h.Set("Warning", `299 saveeat "This API version will be removed on `+ver.SunsetDate.Format("2006-01-02")+`"`)
				}
			}
			return next(c)
		}
	}
}

// Resolver rejects requests for unknown /vN prefixes and records the resolved
// version on the context
func (v *Versions) Resolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := v.current
			if m := versionPrefix.FindStringSubmatch(c.Request().URL.Path); m != nil {
				if _, ok := v.supported[m[1]]; !ok {
					return c.JSON(http.StatusNotFound, map[string]any{
						"error":              "Unsupported API version",
						"supported_versions": v.List(),
					})
				}
				version = m[1]
			}
			c.Set(versionKey, version)
			return next(c)
		}
	}
}

// List returns the supported version names in order
func (v *Versions) List() []string {
	out := make([]string, 0, len(v.supported))
	for name := range v.supported {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (v *Versions) Current() string {
	return v.current
}
