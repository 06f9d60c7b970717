package main

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	timeLayout   = "2006-01-02 15:04"
	summaryWidth = 48
	placeholder  = "-"
)

var titleCaser = cases.Title(language.English)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// displayUserType renders "podcaster" as "Podcaster".
func displayUserType(userType string) string {
	userType = strings.TrimSpace(userType)
	if userType == "" {
		return placeholder
	}
	return titleCaser.String(userType)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return placeholder
	}
	return t.Local().Format(timeLayout)
}

func formatRating(v *float64) string {
	if v == nil {
		return placeholder
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// truncate shortens value to width runes on a single line.
func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if utf8.RuneCountInString(value) <= width {
		return value
	}
	runes := []rune(value)
	return string(runes[:width-1]) + "…"
}

func parseID(value, label string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, &usageError{msg: "invalid " + label + " id: " + value}
	}
	return id, nil
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }
