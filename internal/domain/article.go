// Package domain holds the entity types shared across the ingestion,
// extraction, and scoring services. Entities cross service boundaries only
// as JSON on the message bus or as rows in the document store — no
// in-memory object graph ever spans more than one service.
package domain

import "time"

// ProcessingStatus is the lifecycle state of an Article.
type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusProcessed ProcessingStatus = "processed"
	StatusFailed    ProcessingStatus = "failed"
)

// Article is created by the Ingestion Service on first observation of a
// URL and is mutated only to flip ProcessingStatus; it is never deleted by
// the core.
type Article struct {
	ID                string           `json:"id"`
	URL                string           `json:"url"`
	Title              string           `json:"title"`
	Content            string           `json:"content"`
	Source             string           `json:"source"`
	ScrapedAt          time.Time        `json:"scraped_at"`
	ContentHash        string           `json:"content_hash"`
	ProcessingStatus   ProcessingStatus `json:"processing_status"`
	ErrorLog           string           `json:"error_log,omitempty"`
	PreScore           *float64         `json:"pre_score,omitempty"`
}

// RawArticle is what a Fetcher plugin returns before normalization: the
// content hash has not yet been computed and no ID has been assigned.
// PreScore is an optional externally-supplied risk score. The ingestion
// service never derives it, only gates the high-risk alert path on it.
type RawArticle struct {
	URL      string
	Title    string
	Content  string
	Source   string
	PreScore *float64
}
