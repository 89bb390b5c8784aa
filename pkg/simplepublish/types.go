package simplepublish

import (
	"time"

	"github.com/google/uuid"
)

// Status is the domain type for entity lifecycle states.
type Status string

// Status constants (typed).
const (
	StatusDraft      Status = "draft"
	StatusPublished  Status = "published"
	StatusArchived   Status = "archived"
	StatusLive       Status = "live"
	StatusInactive   Status = "inactive"
	StatusComingSoon Status = "coming_soon"
)

// EntityKind identifies one publishable collection.
type EntityKind string

// Entity kind constants (typed).
const (
	KindArticle     EntityKind = "article"
	KindService     EntityKind = "service"
	KindSample      EntityKind = "sample"
	KindTestimonial EntityKind = "testimonial"
	KindImage       EntityKind = "image"
)

// Role is the caller's capability class, extracted from the auth token.
type Role string

// Role constants (typed).
const (
	RolePublic     Role = "public"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Elevated reports whether the role carries write/admin capabilities.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanDelete reports whether the role may remove entities permanently.
func (r Role) CanDelete() bool {
	return r == RoleSuperAdmin
}

// Entity is the generalized publishable record. All five collections share
// this shape; per-kind behavior lives in KindSpec.
type Entity struct {
	ID          uuid.UUID  `json:"id"`
	Kind        EntityKind `json:"kind"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary,omitempty"`
	ContentURL  string     `json:"content_url,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	Rating      int        `json:"rating,omitempty"`
	Views       int64      `json:"views"`
	Status      Status     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// OrderStatus is the domain type for intake-order states.
type OrderStatus string

// Order status constants (typed).
const (
	OrderStatusNew     OrderStatus = "new"
	OrderStatusHandled OrderStatus = "handled"
)

// Order is one submission of the public order-intake form.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Service   string      `json:"service,omitempty"`
	Message   string      `json:"message,omitempty"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// KindSpec is the closed per-kind definition: legal statuses, the toggle
// pair, terminal and side states, public visibility, search and sort
// behavior. Specs are registered once at package init and never mutated.
type KindSpec struct {
	Kind EntityKind

	// Statuses is the closed enumeration of legal states for this kind.
	Statuses []Status

	// TogglePair is {resting, primary}: Toggle flips between exactly these
	// two. Entering the primary state stamps PublishedAt once.
	TogglePair [2]Status

	// Terminal is the state with no outgoing edges ("" when the kind has
	// none). Toggle and SetStatus both refuse to leave it.
	Terminal Status

	// SideStates are reachable only through a direct status set, never
	// through Toggle; Toggle from one of them fails.
	SideStates []Status

	// Public are the statuses visible to non-elevated callers.
	Public []Status

	// ContentBearing kinds offload large bodies to the external store.
	// BinaryAsset kinds take multipart file parts instead of raw text.
	ContentBearing bool
	BinaryAsset    bool

	// SearchFields are the entity fields a free-text search matches against.
	SearchFields []string

	// SortKeys maps caller-selectable sort names to concrete sorts; unknown
	// names fall back to DefaultSort.
	SortKeys    map[string]Sort
	DefaultSort Sort

	DefaultLimit int
}

// PrimaryStatus returns the publicly visible toggle target (published/live).
func (sp KindSpec) PrimaryStatus() Status { return sp.TogglePair[1] }

// RestingStatus returns the non-visible toggle state (draft).
func (sp KindSpec) RestingStatus() Status { return sp.TogglePair[0] }

// HasStatus reports whether s belongs to the kind's closed status set.
func (sp KindSpec) HasStatus(s Status) bool {
	for _, known := range sp.Statuses {
		if known == s {
			return true
		}
	}
	return false
}

func (sp KindSpec) isSideState(s Status) bool {
	for _, side := range sp.SideStates {
		if side == s {
			return true
		}
	}
	return false
}

var kindSpecs = map[EntityKind]KindSpec{
	KindArticle: {
		Kind:           KindArticle,
		Statuses:       []Status{StatusDraft, StatusPublished, StatusArchived},
		TogglePair:     [2]Status{StatusDraft, StatusPublished},
		Terminal:       StatusArchived,
		Public:         []Status{StatusPublished},
		ContentBearing: true,
		SearchFields:   []string{"title", "summary"},
		SortKeys: map[string]Sort{
			"recent": {Key: "created_at", Desc: true},
			"views":  {Key: "views", Desc: true},
			"title":  {Key: "title"},
		},
		DefaultSort:  Sort{Key: "created_at", Desc: true},
		DefaultLimit: 10,
	},
	KindService: {
		Kind:           KindService,
		Statuses:       []Status{StatusDraft, StatusLive, StatusInactive, StatusComingSoon},
		TogglePair:     [2]Status{StatusDraft, StatusLive},
		SideStates:     []Status{StatusInactive, StatusComingSoon},
		Public:         []Status{StatusLive, StatusComingSoon},
		ContentBearing: true,
		SearchFields:   []string{"title", "summary"},
		SortKeys: map[string]Sort{
			"recent": {Key: "created_at", Desc: true},
			"title":  {Key: "title"},
		},
		DefaultSort:  Sort{Key: "title"},
		DefaultLimit: 20,
	},
	KindSample: {
		Kind:           KindSample,
		Statuses:       []Status{StatusDraft, StatusPublished, StatusArchived},
		TogglePair:     [2]Status{StatusDraft, StatusPublished},
		Terminal:       StatusArchived,
		Public:         []Status{StatusPublished},
		ContentBearing: true,
		SearchFields:   []string{"title", "summary"},
		SortKeys: map[string]Sort{
			"recent": {Key: "created_at", Desc: true},
			"views":  {Key: "views", Desc: true},
		},
		DefaultSort:  Sort{Key: "views", Desc: true},
		DefaultLimit: 12,
	},
	KindTestimonial: {
		Kind:       KindTestimonial,
		Statuses:   []Status{StatusDraft, StatusPublished, StatusArchived},
		TogglePair: [2]Status{StatusDraft, StatusPublished},
		Terminal:   StatusArchived,
		Public:     []Status{StatusPublished},
		SearchFields: []string{"title", "summary"},
		SortKeys: map[string]Sort{
			"rating": {Key: "rating", Desc: true},
			"recent": {Key: "created_at", Desc: true},
		},
		DefaultSort:  Sort{Key: "rating", Desc: true},
		DefaultLimit: 10,
	},
	KindImage: {
		Kind:           KindImage,
		Statuses:       []Status{StatusDraft, StatusPublished, StatusArchived},
		TogglePair:     [2]Status{StatusDraft, StatusPublished},
		Terminal:       StatusArchived,
		Public:         []Status{StatusPublished},
		ContentBearing: true,
		BinaryAsset:    true,
		SearchFields:   []string{"title"},
		SortKeys: map[string]Sort{
			"recent": {Key: "created_at", Desc: true},
			"title":  {Key: "title"},
		},
		DefaultSort:  Sort{Key: "created_at", Desc: true},
		DefaultLimit: 24,
	},
}

// SpecFor returns the registered KindSpec for kind.
func SpecFor(kind EntityKind) (KindSpec, bool) {
	sp, ok := kindSpecs[kind]
	return sp, ok
}

// Kinds returns all registered entity kinds.
func Kinds() []EntityKind {
	return []EntityKind{KindArticle, KindService, KindSample, KindTestimonial, KindImage}
}

// StatusCounts holds grouped per-status totals for one collection.
type StatusCounts struct {
	Kind     EntityKind       `json:"kind"`
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"by_status"`
}
