package api

// Paging is the pagination header shared by every paginated envelope.
// Pages are 1-indexed.
type Paging struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// NextPage returns the page number following this one, or ok=false when
// this page is the last. The next page exists iff
// page < ceil(total/pageSize).
func (paging Paging) NextPage() (int, bool) {
	if paging.PageSize <= 0 {
		return 0, false
	}

	pageCount := (paging.Total + paging.PageSize - 1) / paging.PageSize

	if paging.Page >= pageCount {
		return 0, false
	}

	return paging.Page + 1, true
}
