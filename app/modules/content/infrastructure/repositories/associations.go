package contentdb

import "fmt"

// Association is a named many-to-many relation between a page container and one
// ordered entity type. Each association is its own ordering scope.
type Association struct {
	Name            string
	EntityType      EntityType
	ContainerType   ContainerType
	ContainerColumn string
	EntityColumn    string
}

func (a Association) String() string { return a.Name }

var (
	AboutPageSponsors = Association{
		Name: "about_page_sponsors", EntityType: EntitySponsor, ContainerType: ContainerAboutPage,
		ContainerColumn: "about_page_id", EntityColumn: "sponsor_id",
	}
	AboutPageClubValues = Association{
		Name: "about_page_club_values", EntityType: EntityClubValue, ContainerType: ContainerAboutPage,
		ContainerColumn: "about_page_id", EntityColumn: "club_value_id",
	}
	HomePageSponsors = Association{
		Name: "home_page_sponsors", EntityType: EntitySponsor, ContainerType: ContainerHomePage,
		ContainerColumn: "home_page_id", EntityColumn: "sponsor_id",
	}
	TeamPageProfessors = Association{
		Name: "team_page_professors", EntityType: EntityProfessor, ContainerType: ContainerTeamPage,
		ContainerColumn: "team_page_id", EntityColumn: "professor_id",
	}
	TeamPageMembers = Association{
		Name: "team_page_team_members", EntityType: EntityTeamMember, ContainerType: ContainerTeamPage,
		ContainerColumn: "team_page_id", EntityColumn: "team_member_id",
	}
	PricingPageMenuItems = Association{
		Name: "pricing_page_menu_items", EntityType: EntityMenuItem, ContainerType: ContainerPricingPage,
		ContainerColumn: "pricing_page_id", EntityColumn: "menu_item_id",
	}
	PricingPageMenuItemRows = Association{
		Name: "pricing_page_menu_item_rows", EntityType: EntityMenuItemRow, ContainerType: ContainerPricingPage,
		ContainerColumn: "pricing_page_id", EntityColumn: "menu_item_row_id",
	}
	NavigationBarRenders = Association{
		Name: "navigation_bar_renders", EntityType: EntityRender, ContainerType: ContainerNavigationBar,
		ContainerColumn: "navigation_bar_id", EntityColumn: "render_id",
	}
)

// AllAssociations lists every association in migration order.
var AllAssociations = []Association{
	AboutPageSponsors,
	AboutPageClubValues,
	HomePageSponsors,
	TeamPageProfessors,
	TeamPageMembers,
	PricingPageMenuItems,
	PricingPageMenuItemRows,
	NavigationBarRenders,
}

// LookupAssociation finds an association by its name.
func LookupAssociation(name string) (Association, bool) {
	for _, a := range AllAssociations {
		if a.Name == name {
			return a, true
		}
	}
	return Association{}, false
}

type tableInfo struct {
	table      string
	nameColumn string
}

var entityTables = map[EntityType]tableInfo{
	EntitySponsor:     {"sponsors", "name"},
	EntityClubValue:   {"club_values", "title"},
	EntityProfessor:   {"professors", "name"},
	EntityTeamMember:  {"team_members", "name"},
	EntityMenuItem:    {"menu_items", "title"},
	EntityMenuItemRow: {"menu_item_rows", "label"},
	EntityRender:      {"renders", "name"},
}

var containerTables = map[ContainerType]string{
	ContainerAboutPage:     "about_pages",
	ContainerTeamPage:      "team_pages",
	ContainerPricingPage:   "pricing_pages",
	ContainerNavigationBar: "navigation_bars",
	ContainerHomePage:      "home_pages",
}

// Table returns the table backing the entity type.
func (t EntityType) Table() string { return entityTables[t].table }

// NameColumn returns the column used as the entity's display name.
func (t EntityType) NameColumn() string { return entityTables[t].nameColumn }

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	_, ok := entityTables[t]
	return ok
}

// Table returns the table backing the container type.
func (t ContainerType) Table() string { return containerTables[t] }

// Valid reports whether t is a known container type.
func (t ContainerType) Valid() bool {
	_, ok := containerTables[t]
	return ok
}

// NewRecord returns an empty record of the given entity type.
func NewRecord(t EntityType) (OrderedRecord, error) {
	switch t {
	case EntitySponsor:
		return &Sponsor{}, nil
	case EntityClubValue:
		return &ClubValue{}, nil
	case EntityProfessor:
		return &Professor{}, nil
	case EntityTeamMember:
		return &TeamMember{}, nil
	case EntityMenuItem:
		return &MenuItem{}, nil
	case EntityMenuItemRow:
		return &MenuItemRow{}, nil
	case EntityRender:
		return &Render{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, t)
}

// NewContainerRecord returns an empty record of the given container type.
func NewContainerRecord(t ContainerType) (ContainerRecord, error) {
	switch t {
	case ContainerAboutPage:
		return &AboutPage{}, nil
	case ContainerTeamPage:
		return &TeamPage{}, nil
	case ContainerPricingPage:
		return &PricingPage{}, nil
	case ContainerNavigationBar:
		return &NavigationBar{}, nil
	case ContainerHomePage:
		return &HomePage{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownContainerType, t)
}

// ScopesOf returns the associations declared by the entity type.
func ScopesOf(t EntityType) ([]Association, error) {
	rec, err := NewRecord(t)
	if err != nil {
		return nil, err
	}
	return rec.Scopes(), nil
}
