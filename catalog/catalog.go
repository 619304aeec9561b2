// Package catalog holds a small registered model used by the command line
// tool and the inspector: repository owners with their repositories, and
// scenes made of shapes.
package catalog

import (
	"github.com/sarchlab/propjson/geometry"
	"github.com/sarchlab/propjson/property"
	"github.com/sarchlab/propjson/reflectprop"
	"github.com/sarchlab/propjson/serialization"
)

// Owner is a user or an organization owning repositories.
type Owner struct {
	property.NamedBase

	Login string  `prop:"login"`
	Kind  string  `prop:"type"`
	Repos []*Repo `prop:"repos"`
}

// AddRepos appends a repository and takes ownership of it.
func (o *Owner) AddRepos(r *Repo) {
	if r != nil {
		r.owner = o
	}

	o.Repos = append(o.Repos, r)
}

// Repo is a source repository.
type Repo struct {
	property.NamedBase

	ID           int64             `prop:"id,readonly"`
	FullName     string            `prop:"full_name"`
	Description  *string           `prop:"description"`
	Stars        int64             `prop:"stargazers_count"`
	Forks        int32             `prop:"forks_count"`
	Archived     bool              `prop:"archived"`
	Topics       []string          `prop:"topics"`
	Languages    map[string]int64  `prop:"languages"`
	License      *License          `prop:"license"`
	Contributors []*Contributor    `prop:"contributors"`
	Meta         map[string]any    `prop:"meta"`
	Labels       map[string]string `prop:"-"`

	owner *Owner
}

// Owner returns the owner the repository was decoded under.
func (r *Repo) Owner() *Owner {
	return r.owner
}

// SetOwner records the owning Owner.
func (r *Repo) SetOwner(owner any) {
	r.owner, _ = owner.(*Owner)
}

// AddContributors appends a contributor.
func (r *Repo) AddContributors(c *Contributor) {
	r.Contributors = append(r.Contributors, c)
}

// License is the license a repository is distributed under.
type License struct {
	Key    string `prop:"key"`
	Name   string `prop:"name"`
	SPDXID string `prop:"spdx_id"`
}

// Contributor is someone who committed to a repository.
type Contributor struct {
	Login         string `prop:"login"`
	Contributions int32  `prop:"contributions"`
}

// Scene is a canvas of shapes.
type Scene struct {
	property.NamedBase

	Title  string        `prop:"title"`
	Size   geometry.Size `prop:"size,converter=size"`
	Shapes []*Shape      `prop:"shapes"`
}

// AddShapes appends a shape.
func (s *Scene) AddShapes(shape *Shape) {
	s.Shapes = append(s.Shapes, shape)
}

// Shape is a rectangle on a scene.
type Shape struct {
	property.NamedBase

	Label  string         `prop:"label"`
	Bounds geometry.Rect  `prop:"bounds,converter=rect"`
	Anchor geometry.Point `prop:"anchor"`
	Tags   []string       `prop:"tags"`
}

// Register registers the catalog types and the geometry stringifiers they
// rely on.
func Register(registry *serialization.Registry) error {
	if err := geometry.RegisterStringifiers(registry); err != nil {
		return err
	}

	registrations := []struct {
		sample any
		opts   []reflectprop.Option
	}{
		{geometry.Point{}, []reflectprop.Option{reflectprop.AsValueType()}},
		{&License{}, nil},
		{&Contributor{}, nil},
		{&Repo{}, nil},
		{&Owner{}, nil},
		{&Shape{}, nil},
		{&Scene{}, nil},
	}

	for _, reg := range registrations {
		if _, err := reflectprop.Register(registry, reg.sample, reg.opts...); err != nil {
			return err
		}
	}

	return nil
}

// NewRegistry creates a frozen registry holding the catalog.
func NewRegistry() (*serialization.Registry, error) {
	registry := serialization.NewRegistry()

	if err := Register(registry); err != nil {
		return nil, err
	}

	registry.Freeze()

	return registry, nil
}
