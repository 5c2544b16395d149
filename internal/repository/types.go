package repository

// SocialPostListFilter 查询社媒帖子列表的过滤条件
type SocialPostListFilter struct {
	Page       int
	PageSize   int
	Status     string
	SourceType string
	Search     string
}

// SocialPostStats 社媒帖子统计
type SocialPostStats struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	BySourceType map[string]int64 `json:"by_source_type"`
}
