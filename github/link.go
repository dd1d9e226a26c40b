package github

import (
	"net/url"
	"strconv"
	"strings"
)

// Page is one page of a paginated listing plus the page numbers advertised
// in the Link header. Zero means the relation was absent.
type Page[T any] struct {
	Items    []T
	NextPage int
	PrevPage int
	LastPage int
}

type pageLinks struct {
	next, prev, last int
}

// parseLink reads the page numbers from an RFC 8288 Link header such as
// `<https://api.github.com/...?page=2>; rel="next", <...?page=9>; rel="last"`.
func parseLink(header string) pageLinks {
	var links pageLinks
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(strings.TrimSpace(part), ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		u, err := url.Parse(target[1 : len(target)-1])
		if err != nil {
			continue
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil {
			continue
		}
		for _, attr := range segments[1:] {
			attr = strings.TrimSpace(attr)
			if !strings.HasPrefix(attr, "rel=") {
				continue
			}
			for _, rel := range strings.Fields(strings.Trim(attr[len("rel="):], `"`)) {
				switch rel {
				case "next":
					links.next = page
				case "prev":
					links.prev = page
				case "last":
					links.last = page
				}
			}
		}
	}
	return links
}
