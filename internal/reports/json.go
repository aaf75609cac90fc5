package reports

import (
	"encoding/json"
)

// FormatDailyJSON formats a daily report as indented JSON ending in a
// newline.
func FormatDailyJSON(report *DailyReport) ([]byte, error) {
	return formatJSON(report)
}

// FormatWeeklyJSON formats a weekly report like FormatDailyJSON.
func FormatWeeklyJSON(report *WeeklyReport) ([]byte, error) {
	return formatJSON(report)
}

func formatJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
