package gloria

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Menu is the part of the POS menu export the dashboard is interested in.
type Menu struct {
	XMLName    xml.Name   `xml:"menu"`
	ID         string     `xml:"id"`
	Currency   string     `xml:"currency"`
	Categories []Category `xml:"categories>category"`
}

type Category struct {
	ID     string `xml:"id"`
	Name   string `xml:"name"`
	Active bool   `xml:"active"`
	Items  []Item `xml:"items>item"`
}

type Item struct {
	ID          string  `xml:"id"`
	Name        string  `xml:"name"`
	Description string  `xml:"description"`
	Price       float64 `xml:"price"`
	Active      bool    `xml:"active"`
}

// Items returns the number of items in all categories.
func (m *Menu) Items() int {
	n := 0
	for _, c := range m.Categories {
		n += len(c.Items)
	}

	return n
}

// ParseMenu decodes a menu export.
func ParseMenu(r io.Reader) (*Menu, error) {
	m := &Menu{}

	if err := xml.NewDecoder(r).Decode(m); err != nil {
		return nil, fmt.Errorf("invalid menu: %w", err)
	}

	return m, nil
}
