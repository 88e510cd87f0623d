package category

import "strings"

// SerbianShops lists retailers active in Serbia. Voice input is normalized
// against this list so shop names stay consistent across records.
var SerbianShops = []string{
	// Supermarkets & hypermarkets
	"Maxi", "Idea", "Roda", "Tempo", "Univerexport", "Aman", "Dis", "Lidl",
	"Mercator", "Super Vero", "Gomex", "DP Market",

	// Tech & electronics
	"Gigatron", "Tehnomanija", "Comtrade", "Win Win", "Emmi", "iStyle",

	// Fashion & clothing
	"Zara", "H&M", "Reserved", "New Yorker", "C&A", "Bershka", "Pull&Bear",
	"Mango", "Terranova", "LC Waikiki", "Sport Vision", "Office Shoes",
	"Deichmann", "Intersport", "Decathlon",

	// Pharmacies & drugstores
	"Apoteka Beograd", "Jankovic", "Lilly", "Zegin", "Benu", "DM",
	"Lilly Drogerie", "Sephora", "Notino",

	// Home & furniture
	"IKEA", "JYSK", "Lesnina", "Forma Ideale", "Emmezeta", "Pepco",

	// DIY & hardware
	"Bauhaus", "Merkur",

	// Bookstores
	"Vulkan", "Laguna", "Delfi",

	// Bakeries
	"Hleb & Kifle", "Pekara Trpkovic", "Pan Pek",

	// Restaurants & fast food
	"McDonald's", "KFC", "Pizza Hut", "Subway", "Burger King", "Walter",
	"Kafana",

	// Cafes
	"Kafeterija", "Costa Coffee", "Starbucks",

	// Gas stations
	"NIS", "OMV", "MOL", "Gazprom", "Lukoil", "EKO", "Knez Petrol",

	// Mobile operators
	"Yettel", "A1", "MTS", "Telekom",

	// Markets
	"Pijaca", "Zelena pijaca", "Kalenic pijaca", "Bajloni",

	// Utilities & services
	"Posta", "Post Express", "AKS", "BEX", "City Express",

	// Fallback
	"Other", "Ostalo",
}

// NormalizeShopName maps free-form input to an entry from SerbianShops.
// Exact case-insensitive match first, then partial containment either way,
// otherwise "Other".
func NormalizeShopName(input string) string {
	normalized := strings.TrimSpace(input)
	if normalized == "" {
		return "Other"
	}

	lower := strings.ToLower(normalized)
	for _, shop := range SerbianShops {
		if strings.ToLower(shop) == lower {
			return shop
		}
	}

	for _, shop := range SerbianShops {
		shopLower := strings.ToLower(shop)
		if strings.Contains(shopLower, lower) || strings.Contains(lower, shopLower) {
			return shop
		}
	}

	return "Other"
}
