package fetch

import (
	"path"
	"strings"

	"supplysync/internal/core/urlnorm"
)

// Kind is the class of a sub request made while loading a page
type Kind int

const (
	// Document is a navigation or redirect target
	Document Kind = iota
	// XHR is a data request issued by the page
	XHR
	// Asset is an image, font, stylesheet or media file
	Asset
)

var assetExt = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".svg": {}, ".ico": {}, ".avif": {},
	".css": {}, ".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
	".mp4": {}, ".webm": {}, ".mp3": {}, ".pdf": {},
}

// RequestPolicy decides which requests a page load may make.
// Third-party domains are always refused
type RequestPolicy struct {
	Origin      string
	BlockAssets bool
}

// Allow reports whether a request of kind k to target is permitted
func (p RequestPolicy) Allow(k Kind, target string) bool {
	if !urlnorm.SameSite(p.Origin, target) {
		return false
	}
	if p.BlockAssets && (k == Asset || IsAsset(target)) {
		return false
	}
	return true
}

// IsAsset guesses from the path extension whether target is a static asset
func IsAsset(target string) bool {
	ext := strings.ToLower(path.Ext(urlnorm.Path(target)))
	_, ok := assetExt[ext]
	return ok
}
