package oceanstor

// Category is one class of component queried from the array.
type Category struct {
	Name            string // REST resource name, e.g. "eth_port"
	Label           string // display label, e.g. "ETH Port"
	IdentifierField string // response field naming the unit
}

// DefaultIdentifierField is used for categories without a more specific
// identifier.
const DefaultIdentifierField = "LOCATION"

// DefaultCategories are checked in this order, and the narrative preserves it.
var DefaultCategories = []Category{
	{Name: "enclosure", Label: "Enclosure", IdentifierField: "SERIALNUM"},
	{Name: "controller", Label: "Controller", IdentifierField: "ID"},
	{Name: "disk", Label: "Disk", IdentifierField: DefaultIdentifierField},
	{Name: "eth_port", Label: "ETH Port", IdentifierField: DefaultIdentifierField},
	{Name: "fc_port", Label: "FC Port", IdentifierField: DefaultIdentifierField},
}
