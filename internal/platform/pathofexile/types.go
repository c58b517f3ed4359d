package pathofexile

import "github.com/wraeclast/stashpricer/internal/domain"

// TabInfo describes one stash tab in the tab list.
type TabInfo struct {
	Name     string `json:"n"`
	Index    int    `json:"i"`
	Type     string `json:"type"`
	Selected bool   `json:"selected"`
}

// StashTabResponse is the get-stash-items payload for one tab. Tabs holds
// the full tab list when the request asked for it; Items belong to the
// requested tab only.
type StashTabResponse struct {
	NumTabs int           `json:"numTabs"`
	Tabs    []TabInfo     `json:"tabs"`
	Items   []domain.Item `json:"items"`
}

// apiError is the error envelope the stash endpoint returns with a 200 on
// some failures.
type apiError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
