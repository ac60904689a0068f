package contentdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EntityType names an ordered entity variant. The string is used verbatim in conflict messages.
type EntityType string

const (
	EntitySponsor     EntityType = "Sponsor"
	EntityClubValue   EntityType = "ClubValue"
	EntityProfessor   EntityType = "Professor"
	EntityTeamMember  EntityType = "TeamMember"
	EntityMenuItem    EntityType = "MenuItem"
	EntityMenuItemRow EntityType = "MenuItemRow"
	EntityRender      EntityType = "Render"
)

// ContainerType names a page container variant.
type ContainerType string

const (
	ContainerAboutPage     ContainerType = "AboutPage"
	ContainerTeamPage      ContainerType = "TeamPage"
	ContainerPricingPage   ContainerType = "PricingPage"
	ContainerNavigationBar ContainerType = "NavigationBar"
	ContainerHomePage      ContainerType = "HomePage"
)

// OrderedRecord is implemented by every row carrying a per-scope display order.
// Scopes lists the associations the type can be a member of; a type that does not
// declare them cannot be stored.
type OrderedRecord interface {
	EntityType() EntityType
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	GetOrder() int
	DisplayName() string
	Scopes() []Association
}

// ContainerRecord is implemented by every page container row.
type ContainerRecord interface {
	ContainerType() ContainerType
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	DisplayName() string
}

// Ordered holds the columns shared by all ordered entities.
type Ordered struct {
	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Order     int       `bun:"display_order,notnull" json:"order"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (o *Ordered) GetID() uuid.UUID   { return o.ID }
func (o *Ordered) SetID(id uuid.UUID) { o.ID = id }
func (o *Ordered) GetOrder() int      { return o.Order }
func (o *Ordered) touch(t time.Time)  { o.UpdatedAt = t }

// Sponsor is a club sponsor shown on the about and home pages.
type Sponsor struct {
	bun.BaseModel `bun:"table:sponsors,alias:sp"`
	Ordered

	Name    string     `bun:"name,notnull" json:"name"`
	Link    string     `bun:"link" json:"link,omitempty"`
	ImageID *uuid.UUID `bun:"image_id,type:uuid" json:"image_id,omitempty"`
}

func (*Sponsor) EntityType() EntityType { return EntitySponsor }
func (s *Sponsor) DisplayName() string  { return s.Name }
func (*Sponsor) Scopes() []Association  { return []Association{AboutPageSponsors, HomePageSponsors} }

// ClubValue is one of the values listed on the about page.
type ClubValue struct {
	bun.BaseModel `bun:"table:club_values,alias:cv"`
	Ordered

	Title       string `bun:"title,notnull" json:"title"`
	Description string `bun:"description" json:"description,omitempty"`
}

func (*ClubValue) EntityType() EntityType { return EntityClubValue }
func (v *ClubValue) DisplayName() string  { return v.Title }
func (*ClubValue) Scopes() []Association  { return []Association{AboutPageClubValues} }

// Professor is a coach listed on the team page.
type Professor struct {
	bun.BaseModel `bun:"table:professors,alias:pf"`
	Ordered

	Name    string     `bun:"name,notnull" json:"name"`
	Belt    string     `bun:"belt" json:"belt,omitempty"`
	Bio     string     `bun:"bio" json:"bio,omitempty"`
	ImageID *uuid.UUID `bun:"image_id,type:uuid" json:"image_id,omitempty"`
}

func (*Professor) EntityType() EntityType { return EntityProfessor }
func (p *Professor) DisplayName() string  { return p.Name }
func (*Professor) Scopes() []Association  { return []Association{TeamPageProfessors} }

// TeamMember is a staff member listed on the team page.
type TeamMember struct {
	bun.BaseModel `bun:"table:team_members,alias:tm"`
	Ordered

	Name    string     `bun:"name,notnull" json:"name"`
	Role    string     `bun:"role" json:"role,omitempty"`
	ImageID *uuid.UUID `bun:"image_id,type:uuid" json:"image_id,omitempty"`
}

func (*TeamMember) EntityType() EntityType { return EntityTeamMember }
func (m *TeamMember) DisplayName() string  { return m.Name }
func (*TeamMember) Scopes() []Association  { return []Association{TeamPageMembers} }

// MenuItem is a pricing tier.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items,alias:mi"`
	Ordered

	Title       string `bun:"title,notnull" json:"title"`
	Price       string `bun:"price" json:"price,omitempty"`
	Period      string `bun:"period" json:"period,omitempty"`
	Description string `bun:"description" json:"description,omitempty"`
}

func (*MenuItem) EntityType() EntityType { return EntityMenuItem }
func (m *MenuItem) DisplayName() string  { return m.Title }
func (*MenuItem) Scopes() []Association  { return []Association{PricingPageMenuItems} }

// MenuItemRow is a feature row of the pricing comparison table.
type MenuItemRow struct {
	bun.BaseModel `bun:"table:menu_item_rows,alias:mr"`
	Ordered

	Label string `bun:"label,notnull" json:"label"`
}

func (*MenuItemRow) EntityType() EntityType { return EntityMenuItemRow }
func (r *MenuItemRow) DisplayName() string  { return r.Label }
func (*MenuItemRow) Scopes() []Association  { return []Association{PricingPageMenuItemRows} }

// RenderType tags what a Render may be attached to.
type RenderType string

const (
	RenderNavBar  RenderType = "navbar"
	RenderSection RenderType = "section"
	RenderBanner  RenderType = "banner"
)

func (t RenderType) Valid() bool {
	switch t {
	case RenderNavBar, RenderSection, RenderBanner:
		return true
	}
	return false
}

// NavBarPosition places a navigation entry inside the bar.
type NavBarPosition string

const (
	NavBarLeft   NavBarPosition = "left"
	NavBarCenter NavBarPosition = "center"
	NavBarRight  NavBarPosition = "right"
)

func (p NavBarPosition) Valid() bool {
	switch p {
	case NavBarLeft, NavBarCenter, NavBarRight:
		return true
	}
	return false
}

// Render is a shared style and behaviour configuration.
type Render struct {
	bun.BaseModel `bun:"table:renders,alias:r"`
	Ordered

	Name           string         `bun:"name,notnull" json:"name"`
	NavBarPosition NavBarPosition `bun:"nav_bar_position,notnull" json:"nav_bar_position"`
	Visible        bool           `bun:"visible,notnull" json:"visible"`
	Type           RenderType     `bun:"type,notnull" json:"type"`
	Color          string         `bun:"color" json:"color,omitempty"`
	IsButton       bool           `bun:"is_button,notnull" json:"is_button"`
}

func (*Render) EntityType() EntityType { return EntityRender }
func (r *Render) DisplayName() string  { return r.Name }
func (*Render) Scopes() []Association  { return []Association{NavigationBarRenders} }

// Page holds the columns shared by all page containers.
type Page struct {
	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (p *Page) GetID() uuid.UUID    { return p.ID }
func (p *Page) SetID(id uuid.UUID)  { p.ID = id }
func (p *Page) DisplayName() string { return p.Title }

type AboutPage struct {
	bun.BaseModel `bun:"table:about_pages,alias:ap"`
	Page
	Body string `bun:"body" json:"body,omitempty"`
}

func (*AboutPage) ContainerType() ContainerType { return ContainerAboutPage }

type TeamPage struct {
	bun.BaseModel `bun:"table:team_pages,alias:tp"`
	Page
}

func (*TeamPage) ContainerType() ContainerType { return ContainerTeamPage }

type PricingPage struct {
	bun.BaseModel `bun:"table:pricing_pages,alias:pp"`
	Page
	Currency string `bun:"currency" json:"currency,omitempty"`
}

func (*PricingPage) ContainerType() ContainerType { return ContainerPricingPage }

type NavigationBar struct {
	bun.BaseModel `bun:"table:navigation_bars,alias:nb"`
	Page
}

func (*NavigationBar) ContainerType() ContainerType { return ContainerNavigationBar }

type HomePage struct {
	bun.BaseModel `bun:"table:home_pages,alias:hp"`
	Page
	Headline string `bun:"headline" json:"headline,omitempty"`
}

func (*HomePage) ContainerType() ContainerType { return ContainerHomePage }

// Member is the projection of an ordered entity used for sibling comparisons.
type Member struct {
	ID          uuid.UUID `bun:"id" json:"id"`
	Order       int       `bun:"display_order" json:"order"`
	DisplayName string    `bun:"display_name" json:"display_name"`
}

// Container identifies one page container instance.
type Container struct {
	Type        ContainerType `bun:"-" json:"type"`
	ID          uuid.UUID     `bun:"id" json:"id"`
	DisplayName string        `bun:"display_name" json:"display_name"`
}

// NavigationItem is a node of the navigation tree. Children are stored as edges.
type NavigationItem struct {
	bun.BaseModel `bun:"table:navigation_items,alias:ni"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Label          string     `bun:"label,notnull" json:"label"`
	Route          string     `bun:"route" json:"route,omitempty"`
	ImageID        *uuid.UUID `bun:"image_id,type:uuid" json:"image_id,omitempty"`
	NavBarRenderID *uuid.UUID `bun:"nav_bar_render_id,type:uuid" json:"nav_bar_render_id,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// NavigationEdge links a parent navigation item to one of its children.
type NavigationEdge struct {
	bun.BaseModel `bun:"table:navigation_item_children,alias:nc"`

	ParentID uuid.UUID `bun:"parent_id,pk,type:uuid" json:"parent_id"`
	ChildID  uuid.UUID `bun:"child_id,pk,type:uuid" json:"child_id"`
}

// SlotPurpose is the role a PageRender slot plays on its page.
type SlotPurpose string

const (
	SlotHeader  SlotPurpose = "header"
	SlotContent SlotPurpose = "content"
	SlotBanner  SlotPurpose = "banner"
)

// PageRender attaches a Render to a named slot of a page.
type PageRender struct {
	bun.BaseModel `bun:"table:page_renders,alias:pr"`

	ID        uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	PageType  ContainerType `bun:"page_type,notnull" json:"page_type"`
	PageID    uuid.UUID     `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Slot      SlotPurpose   `bun:"slot,notnull" json:"slot"`
	RenderID  uuid.UUID     `bun:"render_id,notnull,type:uuid" json:"render_id"`
	CreatedAt time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// AuditEntry records one committed content change.
type AuditEntry struct {
	bun.BaseModel `bun:"table:content_audit_log,alias:al"`

	ID        int64          `bun:"id,pk,autoincrement" json:"id"`
	MessageID string         `bun:"message_id,notnull,unique" json:"message_id"`
	Action    string         `bun:"action,notnull" json:"action"`
	Subject   string         `bun:"subject,notnull" json:"subject"`
	SubjectID uuid.UUID      `bun:"subject_id,type:uuid" json:"subject_id"`
	Details   map[string]any `bun:"details,type:jsonb" json:"details,omitempty"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
