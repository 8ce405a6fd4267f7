package types

import "time"

// type of a journaled operation
type Op string

const (
	OpAcquire Op = "acquire"
	OpRelease Op = "release"
	OpCreate  Op = "create"
	OpDelete  Op = "delete"
	OpExpire  Op = "expire"
)

// an event is one entry of the operation journal
type Event struct {
	Seq    uint64 //assigned by the journal on append
	Op     Op
	Name   string
	Holder string
	Time   time.Time
}
