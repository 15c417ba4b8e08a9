package catalog

import "qr_menu/internal/model"

// builtinMenu 在找不到菜单文件时使用。
func builtinMenu() []model.MenuItem {
	item := func(category, sub, local, alt string, price int64, recommended bool, image string) model.MenuItem {
		return model.MenuItem{
			Category:    category,
			Subcategory: sub,
			NameLocal:   local,
			NameAlt:     alt,
			Price:       price,
			Recommended: recommended,
			Stock:       true,
			ImagePath:   image,
		}
	}
	return []model.MenuItem{
		item("Drinks", "コーヒー", "ブレンドコーヒー", "Blend Coffee", 350, true, "drinks/coffee-blend.png"),
		item("Drinks", "コーヒー", "カフェラテ", "Cafe Latte", 450, true, "drinks/coffee-latte.png"),
		item("Drinks", "コーヒー", "カプチーノ", "Cappuccino", 450, false, "drinks/coffee-cappuccino.png"),
		item("Drinks", "紅茶", "アールグレイ", "Earl Grey", 400, true, "drinks/tea-earl-grey.png"),
		item("Drinks", "紅茶", "ダージリン", "Darjeeling", 400, false, "drinks/tea-darjeeling.png"),
		item("Drinks", "紅茶", "レモンティー", "Lemon Tea", 450, false, "drinks/tea-lemon.png"),
		item("Drinks", "その他", "オレンジジュース", "Orange Juice", 300, false, "drinks/juice-orange.png"),
		item("Drinks", "その他", "アップルジュース", "Apple Juice", 300, false, "drinks/juice-apple.png"),
		item("Drinks", "その他", "ミネラルウォーター", "Mineral Water", 200, false, "drinks/water.png"),
		item("Specials", "チョコレート", "チョコレートケーキ", "Chocolate Cake", 500, true, "sweets/cake-chocolate.png"),
		item("Specials", "チョコレート", "チョコレートムース", "Chocolate Mousse", 550, false, "sweets/mousse-chocolate.png"),
		item("Specials", "フルーツ", "ストロベリーショートケーキ", "Strawberry Shortcake", 600, true, "sweets/cake-strawberry.png"),
		item("Specials", "フルーツ", "アップルパイ", "Apple Pie", 550, false, "sweets/pie-apple.png"),
		item("Specials", "チーズ", "チーズケーキ", "Cheesecake", 500, true, "sweets/cake-cheese.png"),
		item("Specials", "チーズ", "ティラミス", "Tiramisu", 650, true, "sweets/tiramisu.png"),
		item("Snacks", "サンドイッチ", "ハムサンドイッチ", "Ham Sandwich", 400, false, "meals/sandwich-ham.png"),
		item("Snacks", "サンドイッチ", "チキンサンドイッチ", "Chicken Sandwich", 450, true, "meals/sandwich-chicken.png"),
		item("Snacks", "サンドイッチ", "ツナサンドイッチ", "Tuna Sandwich", 400, false, "meals/sandwich-tuna.png"),
		item("Snacks", "パスタ", "カルボナーラ", "Carbonara", 800, true, "meals/pasta-carbonara.png"),
		item("Snacks", "パスタ", "ペペロンチーノ", "Peperoncino", 750, false, "meals/pasta-peperoncino.png"),
		item("Snacks", "パスタ", "ナポリタン", "Napolitan", 700, false, "meals/pasta-napolitan.png"),
	}
}
