package model

import "strings"

// Centralized icons for the tree rows
// Using simple single-width characters for consistent terminal rendering
const (
	IconFolderOpen   = "▾"
	IconFolderClosed = "▸"
	IconChecked      = "[x]"
	IconUnchecked    = "[ ]"
	IconPartial      = "[-]"
	IconCSV          = "▤"
	IconJSON         = "{"
	IconParquet      = "▦"
	IconPDF          = "¶"
	IconText         = "≡"
	IconFile         = "·"
	IconTable        = "⊞"
	IconDone         = "✓"
	IconError        = "✗"
)

// FileIcon picks an icon for a leaf by its file extension.
func FileIcon(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return IconCSV
	case strings.HasSuffix(lower, ".json"):
		return IconJSON
	case strings.HasSuffix(lower, ".parquet"):
		return IconParquet
	case strings.HasSuffix(lower, ".pdf"):
		return IconPDF
	case strings.HasSuffix(lower, ".txt"):
		return IconText
	}
	return IconFile
}
