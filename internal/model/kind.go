package model

// Kind identifies an entity table.
type Kind string

const (
	KindBoard      Kind = "board"
	KindList       Kind = "list"
	KindCard       Kind = "card"
	KindTask       Kind = "task"
	KindLabel      Kind = "label"
	KindMembership Kind = "membership"
	KindAttachment Kind = "attachment"
	KindComment    Kind = "comment"
	KindUser       Kind = "user"
)

// Entity is implemented by every row stored in an entity table.
type Entity interface {
	EntityID() string
}
