package dto

// NoRatingsLabel is shown in professor listings for professors nobody has rated
const NoRatingsLabel = "No ratings yet"

// ModuleItem describes one module instance. Numbers are rendered as strings
// for compatibility with existing clients.
type ModuleItem struct {
	ModuleName    string   `json:"module_name"`
	ModuleCode    string   `json:"module_code"`
	Year          string   `json:"year"`
	Semester      string   `json:"semester"`
	NumProfessors string   `json:"num_professors"`
	Professors    []string `json:"professors"`
	ProfessorsID  []string `json:"professors_id"`
}

// ModuleListResponse lists every module instance
type ModuleListResponse struct {
	NumItems string       `json:"num_items"`
	Items    []ModuleItem `json:"items"`
}

// ProfessorListResponse lists professors as parallel arrays
type ProfessorListResponse struct {
	Names        []string `json:"names"`
	ProfessorIDs []string `json:"professor_ids"`
	Ratings      []string `json:"ratings"`
}
