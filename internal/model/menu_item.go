package model

// MenuItem 菜单条目，以 (NameLocal, NameAlt) 作为唯一标识。
type MenuItem struct {
	Category    string `json:"category" yaml:"category"`
	Subcategory string `json:"subcategory" yaml:"subcategory"`
	NameLocal   string `json:"name_local" yaml:"name_local"`
	NameAlt     string `json:"name_alt" yaml:"name_alt"`
	Price       int64  `json:"price" yaml:"price"` // 最小货币单位
	Recommended bool   `json:"recommended" yaml:"recommended"`
	IsNew       bool   `json:"is_new" yaml:"is_new"`
	Stock       bool   `json:"stock" yaml:"stock"` // false 表示售罄
	ImagePath   string `json:"image_path" yaml:"image_path"`
}

// Matches 判断 name 是否匹配任一显示名称。
func (m MenuItem) Matches(name string) bool {
	return name != "" && (m.NameLocal == name || m.NameAlt == name)
}
