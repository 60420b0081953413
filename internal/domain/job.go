package domain

type BaseInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// JobInfo is one requisition plus its posts as last scraped. It is rebuilt on
// every fetch and never cached across orchestration steps.
type JobInfo struct {
	BaseInfo
	Posts []PostInfo `json:"posts"`
}

// PostInfo is a read-only snapshot of a single job post on one board.
type PostInfo struct {
	BaseInfo
	Location string   `json:"location"`
	Board    BaseInfo `json:"board"`
	JobID    int      `json:"job_id"` // owning job, not ownership
	IsLive   bool     `json:"is_live"`
}

func (j JobInfo) PostIDs() map[int]bool {
	ids := make(map[int]bool, len(j.Posts))
	for _, p := range j.Posts {
		ids[p.ID] = true
	}
	return ids
}

// JobRecord is one row of the all-jobs listing.
type JobRecord struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	RequisitionID string `json:"requisition_id"`
}
