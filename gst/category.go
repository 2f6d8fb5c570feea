package gst

import "strings"

type Category struct {
	Name     string
	GSTRate  float64
	Keywords []string
}

// defaultCategories is ordered; earlier categories win ties.
var defaultCategories = []Category{
	{Name: "food", GSTRate: 5, Keywords: []string{
		"biscuit", "cookie", "cake", "bread", "rice", "wheat", "flour", "sugar", "milk", "curd", "cheese",
		"butter", "ghee", "oil", "tea", "coffee", "spice", "masala", "sauce", "ketchup", "jam", "juice",
		"water", "soft drink", "snack", "chocolate", "candy", "sweet", "namkeen", "chips",
	}},
	{Name: "electronics", GSTRate: 18, Keywords: []string{
		"tv", "television", "laptop", "computer", "phone", "mobile", "tablet", "refrigerator", "fridge",
		"washing machine", "dishwasher", "microwave", "oven", "ac", "air conditioner", "fan", "heater",
		"mixer", "grinder", "iron", "camera", "speaker", "headphone", "earphone", "charger", "battery",
	}},
	{Name: "clothing", GSTRate: 5, Keywords: []string{
		"shirt", "t-shirt", "trouser", "pant", "jeans", "dress", "skirt", "saree", "sari", "kurta",
		"pajama", "underwear", "sock", "shoe", "sandal", "chappal", "hat", "cap", "belt", "tie",
	}},
	{Name: "cosmetics", GSTRate: 18, Keywords: []string{
		"soap", "shampoo", "conditioner", "face wash", "moisturizer", "cream", "lotion", "oil",
		"sunscreen", "perfume", "deodorant", "talcum", "powder", "makeup", "lipstick", "nail polish",
		"hair color", "hair dye",
	}},
	{Name: "furniture", GSTRate: 18, Keywords: []string{
		"chair", "table", "desk", "sofa", "bed", "mattress", "pillow", "cushion", "cabinet", "shelf",
		"bookshelf", "wardrobe", "almirah", "mirror", "clock",
	}},
	{Name: "stationery", GSTRate: 12, Keywords: []string{
		"pen", "pencil", "marker", "highlighter", "notebook", "copy", "paper", "book", "diary",
		"calendar", "file", "folder", "stapler", "puncher", "tape", "glue", "scissor",
	}},
}

// CategoryClassifier is the keyword fallback used when no HSN entry matches.
type CategoryClassifier struct {
	categories []Category
}

func NewCategoryClassifier() *CategoryClassifier {
	return &CategoryClassifier{categories: defaultCategories}
}

// Classify counts substring keyword hits per category and returns the
// category with the most hits.
func (c *CategoryClassifier) Classify(description string) (Category, bool) {
	desc := strings.ToLower(description)

	var best Category
	bestHits := 0
	for _, cat := range c.categories {
		hits := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(desc, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = cat, hits
		}
	}
	return best, bestHits > 0
}
