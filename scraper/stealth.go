package scraper

import (
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// webdriverJS pins navigator.webdriver to false on the prototype, where
// detection scripts look first.
const webdriverJS = `Object.defineProperty(Navigator.prototype, 'webdriver', {
	get: () => false,
	configurable: true,
});`

// installStealth registers the evasion scripts so they run before any
// script of every document the page loads. It must be called once,
// before the first navigation.
func installStealth(page *rod.Page) error {
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		return err
	}
	_, err := page.EvalOnNewDocument(webdriverJS)
	return err
}

// storageClearJS empties the storage a document can see before any of its
// own scripts run. Every step is best-effort.
const storageClearJS = `(() => {
	try { localStorage.clear(); } catch (e) {}
	try { sessionStorage.clear(); } catch (e) {}
	try {
		if (indexedDB && indexedDB.databases) {
			indexedDB.databases().then(dbs => {
				for (const db of dbs) { if (db.name) indexedDB.deleteDatabase(db.name); }
			}).catch(() => {});
		}
	} catch (e) {}
})();`

// clearStorage wipes persisted site data: local storage, IndexedDB, cache
// storage and service workers for the origin of rawURL, then local,
// session and IndexedDB storage in every document the page loads,
// whatever its origin. It is best-effort and reports whether both steps
// were accepted.
func clearStorage(page *rod.Page, rawURL string) bool {
	ok := true
	if origin := originOf(rawURL); origin == "" {
		ok = false
	} else {
		err := proto.StorageClearDataForOrigin{
			Origin:       origin,
			StorageTypes: "local_storage,indexeddb,cache_storage,service_workers",
		}.Call(page)
		if err != nil {
			slog.Debug("storage clear failed", "origin", origin, "error", err)
			ok = false
		}
	}

	if _, err := page.EvalOnNewDocument(storageClearJS); err != nil {
		slog.Debug("storage clear script not installed", "error", err)
		ok = false
	}
	return ok
}

// originOf returns scheme://host of rawURL, or "" when it has no host.
func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
