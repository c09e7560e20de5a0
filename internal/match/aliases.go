package match

// categoryAliases maps canonical category names (lowercase) to synonym
// keywords the vision collaborator tends to emit. The table is loaded
// once and never mutated.
var categoryAliases = map[string][]string{
	"groceries": {
		"grocery", "supermarket", "market", "walmart", "tesco", "aldi",
		"lidl", "costco", "food shop", "mart",
	},
	"dining": {
		"restaurant", "cafe", "coffee", "bar", "takeaway", "takeout",
		"fast food", "mcdonald", "starbucks", "lunch", "dinner", "eating out",
	},
	"transport": {
		"taxi", "uber", "bus", "train", "metro", "fuel", "gas station",
		"petrol", "parking", "toll", "ride",
	},
	"shopping": {
		"clothes", "clothing", "amazon", "mall", "store", "retail",
		"electronics", "shoes",
	},
	"entertainment": {
		"cinema", "movie", "netflix", "spotify", "concert", "game",
		"streaming", "theater",
	},
	"utilities": {
		"electricity", "electric", "water", "internet", "phone", "mobile",
		"broadband", "heating", "utility",
	},
	"health": {
		"pharmacy", "doctor", "hospital", "medicine", "dental", "clinic",
		"gym", "fitness",
	},
	"travel": {
		"hotel", "flight", "airline", "airbnb", "booking", "vacation",
		"holiday",
	},
	"housing": {
		"rent", "mortgage", "landlord", "lease",
	},
	"salary": {
		"payroll", "wages", "paycheck", "income", "employer",
	},
	"education": {
		"tuition", "school", "course", "university", "books", "training",
	},
	"subscriptions": {
		"subscription", "membership", "monthly plan",
	},
}
