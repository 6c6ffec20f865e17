package models

import "time"

// Collection names a kind of record a client can subscribe to
type Collection string

const (
	CollectionCourses Collection = "courses"
	CollectionLessons Collection = "lessons"
	CollectionTasks   Collection = "tasks"
	CollectionDigest  Collection = "digest"
)

// Collections lists the record collections in a stable order
var Collections = []Collection{CollectionCourses, CollectionLessons, CollectionTasks}

// Valid reports whether c names a record collection
func (c Collection) Valid() bool {
	switch c {
	case CollectionCourses, CollectionLessons, CollectionTasks:
		return true
	}
	return false
}

// EventOp is the kind of change
type EventOp string

const (
	OpCreated EventOp = "created"
	OpUpdated EventOp = "updated"
	OpDeleted EventOp = "deleted"
	OpNotice  EventOp = "notice"
)

// Event announces a change to one of a user's records
type Event struct {
	UserID     string            `json:"userId"`
	Collection Collection        `json:"collection"`
	Op         EventOp           `json:"op"`
	IDs        []string          `json:"ids,omitempty"`
	At         time.Time         `json:"at"`
	Data       map[string]string `json:"data,omitempty"`
}
