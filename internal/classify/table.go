package classify

// categoryOrder is the declaration order of the category set, used for
// display lists and as the tie-break order in Suggest.
var categoryOrder = []Category{
	FoodDining,
	Groceries,
	Transportation,
	Entertainment,
	Shopping,
	Utilities,
	Healthcare,
	Other,
}

type rule struct {
	category Category
	keywords []string
}

// classifyRules is scanned top to bottom by Classify. The order is a
// deliberate tie-break policy (Healthcare beats Shopping, and so on), not
// alphabetical and not the display order above. Keywords are lowercase and
// matched as literal substrings, each list in its declared order.
var classifyRules = []rule{
	{Healthcare, []string{
		"pharmacy", "doctor", "dentist", "dental", "hospital", "clinic",
		"medicine", "prescription", "copay", "therapy", "vet",
	}},
	{Transportation, []string{
		"gas", "fuel", "uber", "lyft", "taxi", "bus", "train", "subway",
		"parking", "toll", "car wash", "oil change",
	}},
	{Groceries, []string{
		"grocery", "groceries", "supermarket", "walmart", "costco", "aldi",
		"trader joe", "whole foods", "safeway", "kroger", "market",
	}},
	{FoodDining, []string{
		"restaurant", "coffee", "cafe", "lunch", "dinner", "breakfast",
		"pizza", "burger", "sushi", "takeout", "mcdonald", "starbucks",
		"drinks", "bar",
	}},
	{Utilities, []string{
		"electric", "electricity", "water bill", "internet", "phone bill",
		"utility", "rent", "insurance", "bill",
	}},
	{Entertainment, []string{
		"movie", "cinema", "netflix", "spotify", "concert", "theater",
		"museum", "game", "ticket", "streaming",
	}},
	{Shopping, []string{
		"amazon", "clothes", "shoes", "mall", "target", "shopping", "shop",
		"store", "electronics", "gift",
	}},
	{Other, nil},
}
