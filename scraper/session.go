package scraper

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/serpscout/models"
	"github.com/ysmood/gson"
)

// applyProfile pins the page's identity to prof: user agent, platform,
// Accept-Language, viewport, timezone and locale. It runs before the
// first navigation and nothing changes them afterwards.
func applyProfile(page *rod.Page, prof models.SessionProfile) error {
	acceptLang := prof.AcceptLanguage()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      prof.UserAgent,
		AcceptLanguage: acceptLang,
		Platform:       platformFor(prof.UserAgent),
	}); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             prof.Viewport.Width,
		Height:            prof.Viewport.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: prof.TimezoneID}).Call(page); err != nil {
		return fmt.Errorf("set timezone: %w", err)
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: icuLocale(prof.Locale)}).Call(page); err != nil {
		return fmt.Errorf("set locale: %w", err)
	}

	if acceptLang != "" {
		err := proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{"Accept-Language": acceptLang}),
		}.Call(page)
		if err != nil {
			return fmt.Errorf("set headers: %w", err)
		}
	}
	return nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// icuLocale turns a BCP 47 tag ("en-IN") into the ICU form ("en_IN")
// the emulation domain expects.
func icuLocale(locale string) string {
	return strings.ReplaceAll(locale, "-", "_")
}

// platformFor derives navigator.platform from the user agent so the two
// never disagree.
func platformFor(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Win32"
	case strings.Contains(ua, "Macintosh"):
		return "MacIntel"
	case strings.Contains(ua, "Linux"):
		return "Linux x86_64"
	default:
		return ""
	}
}
