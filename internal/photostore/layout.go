package photostore

import (
	"path"
	"regexp"
	"strings"
)

// Event folders follow two shapes. Single-day events hold collection folders
// directly; multi-day events insert a day level whose folder names start with
// a DD-MM- day code:
//
//	event/collection/photo.jpg
//	event/12-03-saturday/collection/photo.jpg
var dayCodeRe = regexp.MustCompile(`^\d{2}-\d{2}-`)

// IsDayFolder reports whether a folder name carries a day code prefix.
func IsDayFolder(name string) bool {
	return dayCodeRe.MatchString(name)
}

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// IsPhoto reports whether an object name has a recognized photo extension.
func IsPhoto(name string) bool {
	return photoExtensions[strings.ToLower(path.Ext(name))]
}

// nativeFormats are accepted by the recognition service without transcoding.
var nativeFormats = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// NeedsTranscode reports whether a photo must be converted to JPEG before
// submission to the recognition service.
func NeedsTranscode(name string) bool {
	return !nativeFormats[strings.ToLower(path.Ext(name))]
}

// PhotoDescriptor identifies one enumerated photo.
type PhotoDescriptor struct {
	Key  string `json:"key"`  // full object key in the bucket
	Name string `json:"name"` // base file name
	Path string `json:"path"` // folder path relative to the bucket root
	Size int64  `json:"size"`
}

// Collection is a folder of photos inside an event (optionally inside a day).
type Collection struct {
	Name       string `json:"name"`
	PhotoCount int    `json:"photo_count"`
	CoverURL   string `json:"cover_url,omitempty"`
}

// Structure describes the folder shape of one event.
type Structure struct {
	EventID  string   `json:"event_id"`
	MultiDay bool     `json:"multi_day"`
	Days     []string `json:"days,omitempty"`
}
