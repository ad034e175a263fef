// Package catalog is the compiled-in category dictionary. The tables
// are fixed at process start and read-only; every consumer shares the
// same slices and must not mutate them.
package catalog

import (
	"strings"

	"chitieu/internal/core"
)

// Category is a named classification bucket. Keywords are matched as
// lowercase substrings against the transcript, in the order declared
// here; declaration order of the categories themselves is the
// tie-break rule for classification.
type Category struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Icon     string               `json:"icon"`
	Color    string               `json:"color"`
	Type     core.TransactionType `json:"type"`
	Keywords []string             `json:"keywords"`
}

// Expense categories in classification order. The bare word "ăn" is
// deliberately absent from the food keywords: it is a substring of
// "xăng" and would steal fuel purchases from transport.
var expenseCategories = []Category{
	{
		ID: "food", Name: "Ăn uống", Icon: "restaurant", Color: "#FF6B6B", Type: core.Expense,
		Keywords: []string{"đi ăn", "ăn sáng", "ăn trưa", "ăn tối", "ăn vặt", "cơm", "phở", "bún", "bánh", "cafe", "cà phê", "trà sữa", "nhà hàng", "đồ ăn"},
	},
	{
		ID: "transport", Name: "Di chuyển", Icon: "directions-car", Color: "#4ECDC4", Type: core.Expense,
		Keywords: []string{"xăng", "gửi xe", "rửa xe", "sửa xe", "grab", "taxi", "xe buýt", "xe ôm", "vé xe", "vé tàu", "vé máy bay"},
	},
	{
		ID: "shopping", Name: "Mua sắm", Icon: "shopping-cart", Color: "#FFD93D", Type: core.Expense,
		Keywords: []string{"mua sắm", "quần áo", "giày", "túi xách", "mỹ phẩm", "shopee", "lazada", "tiki"},
	},
	{
		ID: "bills", Name: "Hóa đơn", Icon: "receipt", Color: "#6C5CE7", Type: core.Expense,
		Keywords: []string{"hóa đơn", "tiền điện", "tiền nước", "tiền nhà", "thuê nhà", "internet", "wifi", "điện thoại"},
	},
	{
		ID: "entertainment", Name: "Giải trí", Icon: "movie", Color: "#A8E6CF", Type: core.Expense,
		Keywords: []string{"xem phim", "phim", "game", "karaoke", "du lịch", "nhậu", "bia"},
	},
	{
		ID: "health", Name: "Sức khỏe", Icon: "local-hospital", Color: "#FF8B94", Type: core.Expense,
		Keywords: []string{"thuốc", "khám", "bệnh viện", "nha khoa", "gym"},
	},
	{
		ID: "education", Name: "Học tập", Icon: "school", Color: "#95E1D3", Type: core.Expense,
		Keywords: []string{"học phí", "khóa học", "sách", "học"},
	},
	{
		ID: "other_expense", Name: "Chi khác", Icon: "help-outline", Color: "#B0BEC5", Type: core.Expense,
		Keywords: nil,
	},
}

var incomeCategories = []Category{
	{
		ID: "salary", Name: "Lương", Icon: "attach-money", Color: "#4CAF50", Type: core.Income,
		Keywords: []string{"lương", "tiền lương"},
	},
	{
		ID: "bonus", Name: "Thưởng", Icon: "card-giftcard", Color: "#8BC34A", Type: core.Income,
		Keywords: []string{"thưởng", "tiền thưởng"},
	},
	{
		ID: "gift", Name: "Được cho", Icon: "redeem", Color: "#CDDC39", Type: core.Income,
		Keywords: []string{"được cho", "lì xì", "tiền mừng", "mừng tuổi"},
	},
	{
		ID: "selling", Name: "Bán hàng", Icon: "storefront", Color: "#009688", Type: core.Income,
		Keywords: []string{"bán hàng", "bán"},
	},
	{
		ID: "refund", Name: "Hoàn tiền", Icon: "replay", Color: "#00BCD4", Type: core.Income,
		Keywords: []string{"hoàn tiền", "hoàn lại"},
	},
	{
		ID: "other_income", Name: "Thu khác", Icon: "help-outline", Color: "#B0BEC5", Type: core.Income,
		Keywords: nil,
	},
}

// Expense returns the expense categories in classification order.
func Expense() []Category {
	return expenseCategories
}

// Income returns the income categories in classification order.
func Income() []Category {
	return incomeCategories
}

// All returns the combined view, expenses first.
func All() []Category {
	out := make([]Category, 0, len(expenseCategories)+len(incomeCategories))
	out = append(out, expenseCategories...)
	out = append(out, incomeCategories...)
	return out
}

// ByType returns the category list for the given transaction type.
func ByType(t core.TransactionType) []Category {
	if t == core.Income {
		return incomeCategories
	}
	return expenseCategories
}

// ByID looks a category up across both sets.
func ByID(id string) (Category, bool) {
	for _, c := range expenseCategories {
		if c.ID == id {
			return c, true
		}
	}
	for _, c := range incomeCategories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Fallback returns the type's designated "other" category. If no id
// contains "other" the last category of the list is returned, so the
// function never fails for a known type.
func Fallback(t core.TransactionType) Category {
	list := ByType(t)
	for _, c := range list {
		if strings.Contains(c.ID, "other") {
			return c
		}
	}
	return list[len(list)-1]
}
