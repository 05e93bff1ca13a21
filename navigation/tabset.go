package navigation

import "slices"

// TabSet is the ordered tab bar plus the active selection. It always holds
// at least one tab and active always indexes a tab.
type TabSet struct {
	tabs   []*Tab
	active int
	nextID TabID
}

// NewTabSet returns a set holding one blank tab.
func NewTabSet() *TabSet {
	s := &TabSet{}
	s.Create()
	return s
}

// Create appends a blank tab, makes it active and returns its id.
func (s *TabSet) Create() TabID {
	s.nextID++
	s.tabs = append(s.tabs, newBlankTab(s.nextID))
	s.active = len(s.tabs) - 1
	return s.nextID
}

// Close removes the tab at index. The last remaining tab cannot be closed.
func (s *TabSet) Close(index int) error {
	if index < 0 || index >= len(s.tabs) {
		return invalidIndex(index, len(s.tabs))
	}
	if len(s.tabs) == 1 {
		return ErrEmptyTabSet
	}

	s.tabs = slices.Delete(s.tabs, index, index+1)

	if index <= s.active {
		s.active = max(s.active-1, 0)
	}
	s.active = min(s.active, len(s.tabs)-1)
	return nil
}

// Switch makes the tab at index active.
func (s *TabSet) Switch(index int) error {
	if index < 0 || index >= len(s.tabs) {
		return invalidIndex(index, len(s.tabs))
	}
	s.active = index
	return nil
}

// Active returns a copy of the active tab.
func (s *TabSet) Active() Tab { return s.activeTab().clone() }

func (s *TabSet) activeTab() *Tab { return s.tabs[s.active] }

// ActiveIndex is the bar position of the active tab.
func (s *TabSet) ActiveIndex() int { return s.active }

// Len is the number of open tabs, never less than one.
func (s *TabSet) Len() int { return len(s.tabs) }

// Tabs returns copies of all tabs in bar order.
func (s *TabSet) Tabs() []Tab {
	out := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = t.clone()
	}
	return out
}

// IndexOf returns the current position of the tab with the given id.
func (s *TabSet) IndexOf(id TabID) (int, bool) {
	for i, t := range s.tabs {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *TabSet) byID(id TabID) *Tab {
	if i, ok := s.IndexOf(id); ok {
		return s.tabs[i]
	}
	return nil
}
