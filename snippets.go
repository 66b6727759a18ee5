package vitebridge

import "fmt"

// Paths served by the Vite dev server, relative to its base.
const (
	viteClientPath   = "@vite/client"
	reactRefreshPath = "@react-refresh"
)

// legacyPolyfillsEntry is the conventional manifest entry holding the
// polyfill bundle emitted by the legacy-browser plugin.
const legacyPolyfillsEntry = "polyfills-legacy"

const (
	legacyPolyfillID = "vite-legacy-polyfill"
	legacyEntryClass = "vite-legacy-entry"
)

// detectModernBrowser runs as a module script; module-capable browsers that
// also support dynamic import and import.meta mark themselves modern.
const detectModernBrowser = `try{import.meta.url;import("_").catch(()=>1);}catch(e){}window.__vite_is_modern_browser=true;`

// dynamicFallback loads the legacy bundle in browsers that execute module
// scripts but failed the modernity probe above.
const dynamicFallback = `!function(){if(window.__vite_is_modern_browser)return;console.warn("vite: loading legacy build because dynamic import or import.meta.url is unsupported, syntax error above should be ignored");var e=document.getElementById("vite-legacy-polyfill"),n=document.createElement("script");n.src=e.src,n.onload=function(){System.import(document.getElementById("vite-legacy-entry").getAttribute("data-src"))},document.body.appendChild(n)}();`

// safariNomoduleFix stops Safari 10.1 from fetching nomodule scripts; it
// understands modules but not the nomodule attribute.
const safariNomoduleFix = `!function(){var e=document,t=e.createElement("script");if(!("noModule"in t)&&"onbeforeload"in t){var n=!1;e.addEventListener("beforeload",(function(e){if(e.target===t)n=!0;else if(!e.target.hasAttribute("nomodule")||!n)return;e.preventDefault()}),!0),t.type="module",t.src=".",e.head.appendChild(t),t.remove()}}();`

// legacyEntryBootstrap returns the inline SystemJS loader for a legacy entry
// tag. The entry file URL lives in the tag's data-src attribute so non-legacy
// browsers never fetch it.
func legacyEntryBootstrap(id string) string {
	return fmt.Sprintf("System.import(document.getElementById(%q).getAttribute('data-src'))", id)
}

// reactRefreshPreamble returns the fast-refresh bootstrap that must run
// before any React component module. url points at the dev server's
// @react-refresh endpoint.
func reactRefreshPreamble(url string) string {
	return `import RefreshRuntime from "` + url + `"
RefreshRuntime.injectIntoGlobalHook(window)
window.$RefreshReg$ = () => {}
window.$RefreshSig$ = () => (type) => type
window.__vite_plugin_react_preamble_installed__ = true`
}

// lazyStylesheetPattern is the literal emitted by RenderLazyLinks for each
// stylesheet: a preload that promotes itself on load, then a noscript
// fallback. Byte-for-byte stable; downstream tooling matches on it.
const lazyStylesheetPattern = `<link rel="preload" href="%s" as="style" onload="this.onload=null;this.rel='stylesheet'"><noscript><link rel="stylesheet" href="%s"></noscript>`
