package demo

import (
	"fmt"

	"sales-dashboard/internal/dataset"
)

const (
	monthlyLabel     = "📅 Месячная статистика (12 месяцев)"
	topProductsLabel = "🏆 Топ продукты (10 товаров)"

	detailedDescription    = "Подробные данные о продажах с информацией о заказах, продуктах, регионах и каналах"
	monthlyDescription     = "Агрегированные месячные показатели выручки, заказов и клиентов за 2023 год"
	topProductsDescription = "Рейтинг самых популярных продуктов с метриками продаж и рейтингами"
)

func detailedLabel(records int) string {
	return fmt.Sprintf("📊 Детальные продажи (%d записей)", records)
}

// Entry pairs a demo dataset with its UI label and one-line description.
type Entry struct {
	Label       string
	Description string
	Table       *dataset.Table
}

// Datasets regenerates all demo datasets for the given parameters, in the
// order they are presented. Pure: safe to call repeatedly.
func Datasets(records int, seed int64) ([]Entry, error) {
	detailed, err := GenerateDetailed(records, seed)
	if err != nil {
		return nil, err
	}
	return []Entry{
		{Label: detailedLabel(records), Description: detailedDescription, Table: detailed},
		{Label: monthlyLabel, Description: monthlyDescription, Table: GenerateMonthly(seed)},
		{Label: topProductsLabel, Description: topProductsDescription, Table: GenerateTopProducts(seed)},
	}, nil
}

// Descriptions maps each demo label to its description.
func Descriptions(records int) map[string]string {
	return map[string]string{
		detailedLabel(records): detailedDescription,
		monthlyLabel:           monthlyDescription,
		topProductsLabel:       topProductsDescription,
	}
}

// Dataset regenerates the demo dataset with the given label.
func Dataset(label string, records int, seed int64) (*dataset.Table, bool) {
	switch label {
	case detailedLabel(records):
		t, err := GenerateDetailed(records, seed)
		if err != nil {
			return nil, false
		}
		return t, true
	case monthlyLabel:
		return GenerateMonthly(seed), true
	case topProductsLabel:
		return GenerateTopProducts(seed), true
	default:
		return nil, false
	}
}
