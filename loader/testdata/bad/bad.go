// Package bad contains a misplaced directive.
package bad

//hubgen:hub
type NotAnInterface struct{}
