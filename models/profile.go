package models

// Viewport is the emulated window size in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SessionProfile is the browsing identity presented for one session.
// It is chosen once before the first navigation and copied by value into
// the session, so nothing downstream can change it mid-run.
type SessionProfile struct {
	UserAgent  string   `json:"userAgent"`
	Viewport   Viewport `json:"viewport"`
	Locale     string   `json:"locale"`
	TimezoneID string   `json:"timezoneId"`
}

// AcceptLanguage derives an Accept-Language header value from the locale,
// e.g. "en-IN" -> "en-IN,en;q=0.9".
func (p SessionProfile) AcceptLanguage() string {
	lang := p.Locale
	for i := 0; i < len(lang); i++ {
		if lang[i] == '-' || lang[i] == '_' {
			return p.Locale + "," + lang[:i] + ";q=0.9"
		}
	}
	return lang
}
