package models

// DefaultCatalog returns the built-in SiipCoffee menu. It backs the local
// keyword fallback and serves as the menu source when the backend is
// unreachable. Prices are in IDR.
func DefaultCatalog() Catalog {
	return Catalog{
		string(MenuCategoryIcedCoffee): {
			{ID: "C001", Name: "Iced Coffee Milk Mako", Price: 18000, Description: "Espresso. Condensed. Milk. Palm Sugar."},
			{ID: "C002", Name: "Iced Coffee Karla", Price: 20000, Description: "Espresso. Condensed. Milk. Caramel Syrup."},
			{ID: "C003", Name: "Iced Coffee Rum Cookies", Price: 22000, Description: "Espresso. Condensed. Milk. Rum Syrup. Cookies. Ice Cream"},
			{ID: "C004", Name: "Iced Coffee Mocha", Price: 20000, Description: "Espresso. Condensed. Milk. Chocolate."},
			{ID: "C005", Name: "Iced Coffee Coco", Price: 20000, Description: "Espresso. Coconut Water."},
			{ID: "C006", Name: "Sweet Pandan Iced Coffee", Price: 20000, Description: "Espresso. Condensed. Milk. Pandan Syrup."},
			{ID: "C007", Name: "Coconut Milk Coffee", Price: 20000, Description: "Coconut Milk Coffee."},
			{ID: "C008", Name: "Matcha Presso", Price: 25000, Description: "The savory taste of matcha latte mixed with the deliciousness of double espresso."},
		},
		string(MenuCategoryEspressoBased): {
			{ID: "E001", Name: "Espresso", Price: 12000, Description: "Espresso."},
			{ID: "E002", Name: "Iced Americano", Price: 12000, Description: "Iced Americano."},
			{ID: "E003", Name: "Coffee Latte", Price: 18000, Description: "Hot / ice, sweet / plain."},
			{ID: "E004", Name: "Cappuccino", Price: 18000, Description: "Coffee + Milk."},
		},
		string(MenuCategoryNonCoffee): {
			{ID: "N001", Name: "Chocolate", Price: 20000, Description: "Hot / ice chocolate."},
			{ID: "N002", Name: "Matcha Latte", Price: 20000, Description: "From premium matcha powder."},
			{ID: "N003", Name: "Choco Rum", Price: 22000, Description: "Chocolate + Vanilla Ice Cream + Cookies."},
		},
		string(MenuCategoryRefreshment): {
			{ID: "R001", Name: "Americano Fantasy", Price: 18000, Description: "Sparkling Coffee Based."},
			{ID: "R002", Name: "Red Berry", Price: 18000, Description: "Sparkling Coffee Based."},
			{ID: "R003", Name: "Oranje", Price: 18000, Description: "Sparkling Coffee Based."},
			{ID: "R004", Name: "Aromatic Tea", Price: 18000, Description: "Sparkling Tea Based. Berry."},
			{ID: "R005", Name: "Teagsm", Price: 18000, Description: "Sparkling Tea Based. Apple + Lemon"},
		},
		string(MenuCategoryPastry): {
			{ID: "P001", Name: "Almond Croissant", Price: 20500, Description: "Croissant with Almonds. We heat this item first."},
			{ID: "P002", Name: "Original Croissant", Price: 14000, Description: "Original Croissant. We heat this item first."},
			{ID: "P003", Name: "Pain Au Chocolat", Price: 16000, Description: "Pain Au Chocolat. We heat this item first."},
			{ID: "P004", Name: "CROFFLE", Price: 26000, Description: "SALTED CARAMEL / DOUBLE CHOCOLATE."},
		},
		string(MenuCategoryOthers): {
			{ID: "O001", Name: "Manual Brew", Price: 18000, Description: "Choose beans (Gayo)."},
			{ID: "O002", Name: "Vietnamese Coffee", Price: 15000, Description: "Vietnamese Coffee."},
		},
	}
}
