package model

// Walk traverses the graph reachable from root breadth-first, following
// resolved links and redirects. Each Page is visited once, keyed by URL.
// Traversal stops early when fn returns false.
func Walk(root *Page, fn func(*Page) bool) {
	if root == nil {
		return
	}

	visited := map[string]bool{root.URL: true}
	queue := []*Page{root}

	for len(queue) > 0 {
		page := queue[0]
		queue = queue[1:]

		if !fn(page) {
			return
		}

		for _, link := range page.Links {
			if link.Page != nil && !visited[link.Page.URL] {
				visited[link.Page.URL] = true
				queue = append(queue, link.Page)
			}
		}

		if next := page.RedirectsTo; next != nil && !visited[next.URL] {
			visited[next.URL] = true
			queue = append(queue, next)
		}
	}
}

// Pages returns every Page reachable from root in Walk order.
func Pages(root *Page) []*Page {
	pages := make([]*Page, 0)
	Walk(root, func(p *Page) bool {
		pages = append(pages, p)
		return true
	})
	return pages
}

// Find returns the reachable Page with the given URL, or nil.
func Find(root *Page, url string) *Page {
	var found *Page
	Walk(root, func(p *Page) bool {
		if p.URL == url {
			found = p
			return false
		}
		return true
	})
	return found
}
