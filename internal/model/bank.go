package model

// Bank identifies a supported statement source.
type Bank struct {
	ID                 int64
	Name               string // lowercase slug, routing key
	DisplayDescription string
}
