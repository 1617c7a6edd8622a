package ui

// navigationHistory is the back/forward list of the main window.
// It is only touched from the UI goroutine.
type navigationHistory struct {
	entries []string
	index   int
}

func newNavigationHistory() *navigationHistory {
	return &navigationHistory{index: -1}
}

// Visit appends url after the current entry and drops the forward history.
func (h *navigationHistory) Visit(url string) {
	if h.index >= 0 && h.entries[h.index] == url {
		return
	}
	if h.index < len(h.entries)-1 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, url)
	h.index = len(h.entries) - 1
}

// ReplaceCurrent rewrites the current entry, e.g. after a redirect.
func (h *navigationHistory) ReplaceCurrent(url string) {
	if h.index < 0 {
		h.Visit(url)
		return
	}
	h.entries[h.index] = url
}

func (h *navigationHistory) Current() (string, bool) {
	if h.index < 0 {
		return "", false
	}

	return h.entries[h.index], true
}

func (h *navigationHistory) CanGoBack() bool {
	return h.index > 0
}

func (h *navigationHistory) CanGoForward() bool {
	return h.index < len(h.entries)-1
}

func (h *navigationHistory) Back() (string, bool) {
	if !h.CanGoBack() {
		return "", false
	}
	h.index--

	return h.entries[h.index], true
}

func (h *navigationHistory) Forward() (string, bool) {
	if !h.CanGoForward() {
		return "", false
	}
	h.index++

	return h.entries[h.index], true
}
