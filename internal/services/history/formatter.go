package history

import (
	"FinSignal/internal/domain/models"
	"FinSignal/pkg/util"
)

// Format projects bars into API records, preserving order.
func Format(series models.Series) []models.PriceRecord {
	out := make([]models.PriceRecord, len(series))
	for i, b := range series {
		out[i] = models.PriceRecord{
			Date:   util.FormatDay(b.Date),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return out
}

// FormatTail formats the trailing periodDays bars, or the whole series if shorter.
func FormatTail(series models.Series, periodDays int) []models.PriceRecord {
	return Format(series.Tail(periodDays))
}
