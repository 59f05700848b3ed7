package models

// ReservedList answers whether a normalized handle is reserved by the
// platform and therefore not registrable.
type ReservedList interface {
	IsReserved(normalized string) bool
}
