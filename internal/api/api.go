// Package api maps each backend endpoint to one typed call. Facades only
// build paths, queries and bodies; errors from the client propagate unchanged.
package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/noah-isme/attendance-client/pkg/apiclient"
	"github.com/noah-isme/attendance-client/pkg/config"
)

// Doer is the subset of *apiclient.Client the facades need.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out interface{}, opts ...apiclient.RequestOption) error
}

// PageSizes holds the default page size of each paginated facade call. The
// values are independent of each other.
type PageSizes struct {
	Teachers          int
	Groups            int
	Students          int
	StudentAttendance int
	TeacherHistory    int
	OwnAttendance     int
}

// DefaultPageSizes mirrors the backend dashboard's historical defaults.
func DefaultPageSizes() PageSizes {
	return PageSizes{
		Teachers:          20,
		Groups:            20,
		Students:          15,
		StudentAttendance: 30,
		TeacherHistory:    20,
		OwnAttendance:     30,
	}
}

// PageSizesFromConfig converts configuration values, keeping defaults for
// non-positive entries.
func PageSizesFromConfig(cfg config.PageSizeConfig) PageSizes {
	return PageSizes{
		Teachers:          cfg.Teachers,
		Groups:            cfg.Groups,
		Students:          cfg.Students,
		StudentAttendance: cfg.StudentAttendance,
		TeacherHistory:    cfg.TeacherHistory,
		OwnAttendance:     cfg.OwnAttendance,
	}.withDefaults()
}

func (p PageSizes) withDefaults() PageSizes {
	d := DefaultPageSizes()
	if p.Teachers <= 0 {
		p.Teachers = d.Teachers
	}
	if p.Groups <= 0 {
		p.Groups = d.Groups
	}
	if p.Students <= 0 {
		p.Students = d.Students
	}
	if p.StudentAttendance <= 0 {
		p.StudentAttendance = d.StudentAttendance
	}
	if p.TeacherHistory <= 0 {
		p.TeacherHistory = d.TeacherHistory
	}
	if p.OwnAttendance <= 0 {
		p.OwnAttendance = d.OwnAttendance
	}
	return p
}

// API bundles the four facades over one client.
type API struct {
	Auth    *AuthAPI
	Teacher *TeacherAPI
	Student *StudentAPI
	Admin   *AdminAPI
}

// New builds all facades over client.
func New(client Doer, sizes PageSizes) *API {
	sizes = sizes.withDefaults()
	return &API{
		Auth:    &AuthAPI{c: client},
		Teacher: &TeacherAPI{c: client, sizes: sizes},
		Student: &StudentAPI{c: client, sizes: sizes},
		Admin:   &AdminAPI{c: client, sizes: sizes},
	}
}

// query assembles a query string in insertion order. url.Values sorts keys,
// which would change the request paths the backend logs and caches on.
type query []string

func (q *query) set(key, value string) {
	*q = append(*q, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q *query) setInt(key string, value int64) {
	q.set(key, strconv.FormatInt(value, 10))
}

func (q *query) setIfInt(key string, value int64) {
	if value != 0 {
		q.setInt(key, value)
	}
}

func (q *query) setIfString(key, value string) {
	if value != "" {
		q.set(key, value)
	}
}

func (q *query) page(page, size, defaultSize int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	q.setInt("page", int64(page))
	q.setInt("size", int64(size))
}

func (q query) path(base string) string {
	if len(q) == 0 {
		return base
	}
	out := base + "?"
	for i, part := range q {
		if i > 0 {
			out += "&"
		}
		out += part
	}
	return out
}

func idPath(prefix string, id int64, suffix ...string) string {
	p := prefix + "/" + strconv.FormatInt(id, 10)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
