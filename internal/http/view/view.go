package view

import (
	"embed"
	"html/template"
	"net/url"
	"time"

	"github.com/aldikurniawan2005/media-capture/internal/domain"
)

//go:embed templates/*.html
var files embed.FS

const TimeLayout = "02 January 2006, 15:04:05"

// Gallery is the data behind gallery.html.
type Gallery struct {
	Category domain.Category
	Heading  string
	Empty    string
	IsVideo  bool
	Items    []domain.MediaItem
}

var galleries = map[domain.Category]Gallery{
	domain.CategoryImages: {Heading: "🖼️ Photo Gallery", Empty: "No photos yet."},
	domain.CategoryVideos: {Heading: "🎥 Video Gallery", Empty: "No videos yet.", IsVideo: true},
}

func NewGallery(category domain.Category, items []domain.MediaItem) Gallery {
	g := galleries[category]
	g.Category = category
	g.Items = items
	return g
}

// FormatTime renders t in the server's local time zone.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// ItemURL is the path a stored item is served from.
func ItemURL(item domain.MediaItem) string {
	return "/" + item.Category.String() + "/" + url.PathEscape(item.Filename)
}

func Parse() (*template.Template, error) {
	return template.New("").
		Funcs(template.FuncMap{
			"timestamp": FormatTime,
			"mediaURL":  ItemURL,
		}).
		ParseFS(files, "templates/*.html")
}
