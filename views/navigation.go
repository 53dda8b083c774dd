// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Section is a page of the console
type Section string

const (
	SectionDashboard Section = "dashboard"
	SectionTasks     Section = "tasks"
	SectionUsers     Section = "users"
	SectionEquipment Section = "equipment"
	SectionBookings  Section = "bookings"
	SectionFarms     Section = "farms"
)

// FarmsPage is where the farms section lives
const FarmsPage = "farms/index.html"

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownTab     = errors.New("unknown form tab")
)

// SectionForHref maps a navigation link to its section. "#" is the dashboard
func SectionForHref(href string) (Section, error) {
	href = strings.TrimSpace(href)
	if href == "#" {
		return SectionDashboard, nil
	}
	if name, ok := strings.CutPrefix(href, "#"); ok {
		switch s := Section(name); s {
		case SectionDashboard, SectionTasks, SectionUsers, SectionEquipment, SectionBookings, SectionFarms:
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, href)
}

// FormTab is one step of the farm registration form
type FormTab string

const (
	TabBasicInfo   FormTab = "basic-info"
	TabLocation    FormTab = "location"
	TabCultivation FormTab = "cultivation"
	TabIrrigation  FormTab = "irrigation"
)

// FormTabs lists the registration tabs in display order
var FormTabs = []FormTab{TabBasicInfo, TabLocation, TabCultivation, TabIrrigation}

// Relative tab moves accepted by Navigator.SetTab
const (
	TabNext = "next"
	TabPrev = "prev"
)

func ParseFormTab(s string) (FormTab, error) {
	for _, t := range FormTabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// Navigator tracks the active section and form tab of one session
type Navigator struct {
	mu      sync.Mutex
	section Section
	tab     FormTab
}

func NewNavigator() *Navigator {
	return &Navigator{section: SectionDashboard, tab: TabBasicInfo}
}

// Navigate follows href. leftFarms reports whether the farms section was
// left, which discards the farm draft.
func (n *Navigator) Navigate(href string) (section Section, leftFarms bool, err error) {
	section, err = SectionForHref(href)
	if err != nil {
		return "", false, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	leftFarms = n.section == SectionFarms && section != SectionFarms
	n.section = section
	if section == SectionFarms {
		n.tab = TabBasicInfo
	}
	return section, leftFarms, nil
}

// SetTab activates a form tab by name, or moves with TabNext / TabPrev
// (clamped at the ends)
func (n *Navigator) SetTab(name string) (FormTab, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch name {
	case TabNext, TabPrev:
		i := tabIndex(n.tab)
		if name == TabNext && i < len(FormTabs)-1 {
			i++
		} else if name == TabPrev && i > 0 {
			i--
		}
		n.tab = FormTabs[i]
		return n.tab, nil
	}

	t, err := ParseFormTab(name)
	if err != nil {
		return n.tab, err
	}
	n.tab = t
	return t, nil
}

// ResetForm returns to the first tab of the farms section
func (n *Navigator) ResetForm() {
	n.mu.Lock()
	n.section = SectionFarms
	n.tab = TabBasicInfo
	n.mu.Unlock()
}

func (n *Navigator) Section() Section {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.section
}

func (n *Navigator) Tab() FormTab {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tab
}

func tabIndex(t FormTab) int {
	for i, ft := range FormTabs {
		if ft == t {
			return i
		}
	}
	return 0
}
