package entity

import "time"

type VectorStoreAttributes struct {
	Id                  string    `json:"id"`
	Name                string    `json:"name"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	DaysUntilExpiration int       `json:"days_until_expiration"`
	FileCount           int       `json:"file_count"`
	UsageBytes          int       `json:"usage_bytes"`
}

type CleanupReport struct {
	Files        int `json:"files"`
	VectorStores int `json:"vector_stores"`
	Assistants   int `json:"assistants"`
	Failed       int `json:"failed"`
}

// Total counts the deleted objects.
func (r *CleanupReport) Total() int {
	return r.Files + r.VectorStores + r.Assistants
}

func (r *CleanupReport) Add(other CleanupReport) {
	r.Files += other.Files
	r.VectorStores += other.VectorStores
	r.Assistants += other.Assistants
	r.Failed += other.Failed
}

type AttachedFile struct {
	FileId     string `json:"file_id"`
	Name       string `json:"name,omitempty"`
	Status     string `json:"status"`
	ArchiveId  string `json:"archive_id,omitempty"`
	ArchiveURL string `json:"archive_url,omitempty"`
}
