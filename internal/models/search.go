package models

type SearchResult struct {
	Tasks    []Task    `json:"tasks,omitempty"`
	Projects []Project `json:"projects,omitempty"`
	Users    []User    `json:"users,omitempty"`
}

func (r SearchResult) Empty() bool {
	return len(r.Tasks) == 0 && len(r.Projects) == 0 && len(r.Users) == 0
}

func IntPtr(v int) *int {
	return &v
}
