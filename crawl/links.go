package crawl

import (
	"net/url"
	"strings"

	"github.com/webdex/webdex"
)

// maxLinksPerPage caps outbound links taken from a single page.
const maxLinksPerPage = 200

// filterLinks applies the target's domain allow-list and base-path
// restriction to outbound links, strips fragments, and caps the result.
func filterLinks(links []string, target *webdex.CrawlTarget) []string {
	var out []string
	for _, link := range links {
		if len(out) >= maxLinksPerPage {
			break
		}

		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		if !webdex.HostAllowed(u.Hostname(), target.AllowedDomains) {
			continue
		}
		if target.BasePath != "" && !strings.HasPrefix(u.Path, target.BasePath) {
			continue
		}

		out = append(out, webdex.NormalizeURL(link))
	}
	return out
}
