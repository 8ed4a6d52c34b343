package lexicon

// semanticTables maps each base semantic data type to its value table.
// Composed types (full_name, email) are assembled from these at draw time.
var semanticTables = map[string][]string{
	TypeFirstName: {
		"Alice", "Benjamin", "Clara", "Daniel", "Elena", "Felix",
		"Grace", "Henry", "Isla", "Jonas", "Katherine", "Liam",
		"Maya", "Nathan", "Olivia", "Patrick", "Quinn", "Rosa",
		"Samuel", "Teresa", "Ulrich", "Vera", "Walter", "Yvonne",
	},
	TypeLastName: {
		"Almeida", "Bergstrom", "Castellano", "Dimitrov", "Eriksen",
		"Fontaine", "Gallagher", "Hoffmann", "Ibarra", "Jankowski",
		"Kovacs", "Lindqvist", "Moreau", "Novak", "Okafor",
		"Petrova", "Quintero", "Rossi", "Schneider", "Takahashi",
		"Ueda", "Vasquez", "Whitfield", "Zielinski",
	},
	"city": {
		"Amsterdam", "Brisbane", "Calgary", "Dresden", "Edinburgh",
		"Fukuoka", "Gothenburg", "Helsinki", "Istanbul", "Jakarta",
		"Krakow", "Lisbon", "Montreal", "Nairobi", "Oslo",
		"Porto", "Quito", "Rotterdam", "Seville", "Tallinn",
	},
	"country": {
		"Argentina", "Belgium", "Chile", "Denmark", "Estonia",
		"Finland", "Ghana", "Hungary", "Iceland", "Japan",
		"Kenya", "Latvia", "Morocco", "Norway", "Portugal", "Uruguay",
	},
	"company": {
		"Actram Systems", "Bellvane Labs", "Corvalent", "Driftwell",
		"Ellicott Works", "Fernbrook Analytics", "Graylock Industries",
		"Hollis and Marsh", "Ironvale Partners", "Junewood Group",
		"Kestrel Dynamics", "Larkspur Digital", "Merriton Holdings",
		"Northgate Supply", "Oakhaven Technologies", "Pinewick Trading",
	},
	"product": {
		"desk lamp", "wireless keyboard", "coffee grinder",
		"notebook", "monitor stand", "water bottle",
		"office chair", "fountain pen", "travel mug",
		"bookshelf", "table clock", "document tray",
		"whiteboard marker", "cable organizer", "portable speaker",
		"surge protector",
	},
	"department": {
		"Accounting", "Customer Support", "Engineering", "Facilities",
		"Finance", "Human Resources", "Legal", "Logistics",
		"Marketing", "Operations", "Procurement", "Sales",
	},
	"street": {
		"Alder Court", "Birchwood Lane", "Cedar Row", "Dockside Avenue",
		"Elm Terrace", "Foxglove Drive", "Garnet Street", "Hawthorn Way",
		"Juniper Close", "Kingfisher Road", "Linden Crescent",
		"Mulberry Walk", "Nettleton Road", "Orchard Rise",
		"Primrose Hill", "Quarry Lane",
	},
	"job_title": {
		"Account Manager", "Business Analyst", "Data Engineer",
		"Field Technician", "Graphic Designer", "Logistics Coordinator",
		"Office Administrator", "Product Manager", "Quality Inspector",
		"Research Scientist", "Software Engineer", "Warehouse Supervisor",
	},
	"word": fillerWords,
}

// entityPools maps each named thematic pool to its entity table.
var entityPools = map[string][]string{
	"planets": {
		"Mercury", "Venus", "Earth", "Mars",
		"Jupiter", "Saturn", "Uranus", "Neptune",
	},
	"colors": {
		"amber", "azure", "crimson", "emerald", "indigo", "ivory",
		"magenta", "ochre", "sage", "scarlet", "teal", "violet",
	},
	"metals": {
		"aluminum", "cobalt", "copper", "gold", "iron",
		"nickel", "platinum", "silver", "titanium", "zinc",
	},
	"rivers": {
		"Amazon", "Danube", "Elbe", "Ganges", "Loire", "Mekong",
		"Niger", "Nile", "Rhine", "Thames", "Volga", "Yukon",
	},
	"animals": {
		"badger", "condor", "dolphin", "gazelle", "heron", "ibex",
		"jaguar", "lemur", "marmot", "otter", "pelican", "raccoon",
		"tapir", "wombat",
	},
	"gemstones": {
		"amethyst", "aquamarine", "citrine", "garnet", "jade",
		"moonstone", "onyx", "opal", "topaz", "tourmaline",
	},
}

// defaultEntityPool backs pool-less entity references. Kept separate from
// the named pools so a definition cannot address it by name.
var defaultEntityPool = []string{
	"alder", "aspen", "beech", "cedar", "chestnut", "cypress",
	"elm", "hawthorn", "hazel", "juniper", "larch", "linden",
	"maple", "oak", "pine", "poplar", "rowan", "spruce",
	"sycamore", "willow",
}

// fillerWords is the vocabulary for generated prose lines.
var fillerWords = []string{
	"archive", "balance", "beacon", "bridge", "canvas", "charter",
	"circuit", "cluster", "compass", "contour", "current", "diagram",
	"ember", "fabric", "fulcrum", "garden", "harbor", "horizon",
	"journal", "keystone", "lantern", "ledger", "meadow", "meridian",
	"monument", "orchard", "passage", "pattern", "pillar", "quarry",
	"relay", "ridge", "signal", "summit", "terrace", "thread",
	"timber", "vessel", "vista", "waypoint",
}

// emailDomains is used when composing email addresses from names.
var emailDomains = []string{
	"example.com", "example.org", "example.net",
	"mailbox.test", "postbox.test",
}
