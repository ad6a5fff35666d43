package entity

import "strings"

// Item is a tradable catalog entry.
type Item struct {
	ID      string
	Name    string
	URLName string
}

func (i Item) IsPrime() bool {
	return strings.Contains(strings.ToLower(i.Name), "prime")
}
