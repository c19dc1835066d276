package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkRebuild     BookmarkType = "rebuild"
	BookmarkResize      BookmarkType = "resize"
	BookmarkParticleCap BookmarkType = "particle_cap"
	BookmarkExport      BookmarkType = "export"
)

// Bookmark marks a notable moment in a run.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int64        `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// RebuildBookmark records a rebuild for a text on a surface.
func RebuildBookmark(frame int64, text string, width, height int) Bookmark {
	return Bookmark{
		Type:        BookmarkRebuild,
		Frame:       frame,
		Description: fmt.Sprintf("%q on %dx%d", text, width, height),
	}
}

// ResizeBookmark records a surface size change.
func ResizeBookmark(frame int64, width, height int) Bookmark {
	return Bookmark{
		Type:        BookmarkResize,
		Frame:       frame,
		Description: fmt.Sprintf("%dx%d", width, height),
	}
}

// ParticleCapBookmark records that particle generation stopped at the cap.
func ParticleCapBookmark(frame int64, limit int) Bookmark {
	return Bookmark{
		Type:        BookmarkParticleCap,
		Frame:       frame,
		Description: fmt.Sprintf("capped at %d particles", limit),
	}
}

// ExportBookmark records a written PNG.
func ExportBookmark(frame int64, path string) Bookmark {
	return Bookmark{
		Type:        BookmarkExport,
		Frame:       frame,
		Description: path,
	}
}
